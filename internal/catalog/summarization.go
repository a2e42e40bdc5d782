package catalog

import "github.com/taskrouter/taskrouter-api/internal/descriptor"

func summarizationTasks() []*descriptor.Task {
	return []*descriptor.Task{
		newTask("generic_summarization_task", genericSummaryPrompt, `{
			"type": "object",
			"properties": {
				"content": {"type": "string", "description": "The content to be summarized"},
				"max_length": {"type": ["integer", "null"], "description": "Maximum length of the summary"},
				"focus_areas": `+nullableStringList+`
			},
			"required": ["content"]
		}`, `{
			"type": "object",
			"properties": {
				"summary_params": {
					"type": "object",
					"properties": {
						"title": {"type": "string"},
						"summary": {"type": "string"},
						"key_points": `+stringList+`,
						"categories": `+nullableStringList+`
					},
					"required": ["title", "summary", "key_points"]
				}
			},
			"required": ["summary_params"]
		}`),
	}
}

const genericSummaryPrompt = `You are an AI assistant tasked with summarizing content. Your role is to analyze the given content and provide a concise summary along with key points and relevant categories.

Content to summarize:
{{ content }}
{% if max_length %}
Maximum summary length: {{ max_length }} characters
{% endif %}{% if focus_areas %}
Focus areas:
{% for area in focus_areas %}- {{ area }}
{% endfor %}{% endif %}
Instructions for creating the summary:
1. Title: a concise, descriptive title that captures the main idea of the content.
2. Summary: a clear, coherent summary that highlights the most important information and main ideas.
3. Key points: the 3 to 5 most important points, more only if the content requires it.
4. Categories: general themes, topics, or domains that describe the content.

Focus on the most important information and keep the summary easy to understand.
`
