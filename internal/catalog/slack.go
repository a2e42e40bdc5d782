package catalog

import "github.com/taskrouter/taskrouter-api/internal/descriptor"

func slackTasks() []*descriptor.Task {
	return []*descriptor.Task{
		newTask("extract_keywords", slackKeywordsPrompt, `{
			"type": "object",
			"properties": {
				"context": `+nullableStringList+`,
				"messages": `+stringList+`
			},
			"required": ["messages"]
		}`, `{
			"type": "object",
			"properties": {
				"keywords": {"type": "array", "items": {"type": "string"}, "minItems": 1, "maxItems": 10},
				"reason": {"type": "string"},
				"title": {"type": "string"}
			},
			"required": ["keywords", "reason", "title"]
		}`),

		newTask("summarize_message", slackSummaryPrompt, `{
			"type": "object",
			"properties": {"message": `+slackMessage+`},
			"required": ["message"]
		}`, `{
			"type": "object",
			"properties": {
				"summary": {"type": "string", "description": "A concise summary of the Slack message"},
				"keywords": `+stringList+`,
				"sentiment": {"type": "string", "enum": ["positive", "negative", "neutral"]},
				"importance": {"type": "integer", "minimum": 1, "maximum": 5},
				"action_items": `+nullableStringList+`,
				"thread_type": {"type": ["string", "null"], "description": "e.g. question, announcement, discussion"}
			},
			"required": ["summary", "keywords", "sentiment", "importance"]
		}`),
	}
}

const slackKeywordsPrompt = `You are an AI assistant helping to extract important keywords from Slack messages.

Context:
{% if context %}{% for context_item in context %}
{{ context_item }}
{% endfor %}{% else %}
No context available.
{% endif %}
Messages:
{% for message in messages %}
{{ message }}
{% endfor %}
Please extract the most important keywords from the messages above.

Provide your analysis using the following format:
Keywords: <keyword1>, <keyword2>, ..., <keyword10>
Reason: <detailed explanation for choosing each keyword, with specific examples from the messages>
Title: <concise summary of how the keywords relate to the main topics or themes>
`

const slackSummaryPrompt = `You are an AI assistant for Slack, tasked with summarizing messages. Your role is to provide a concise and informative summary of a Slack message, including its key points and potential action items.

Message Details:
Sender: {{ message.user_id }}
Timestamp: {{ message.timestamp }}
Channel: {{ message.channel_id }}
Content: {{ message.text }}

Please analyze the message and provide the following information:
Summary: <concise summary of the message>
Keywords: <list of keywords extracted from the message>
Sentiment: <sentiment of the message: positive, negative, or neutral>
Importance: <importance score of the message from 1 to 5>
Action Items: <list of action items extracted from the message, if any>
Thread Type: <type of thread, e.g., question, announcement, discussion>
`
