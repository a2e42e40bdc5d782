package catalog

import "github.com/taskrouter/taskrouter-api/internal/descriptor"

const supportTicketInput = `{
	"type": "object",
	"properties": {
		"channel": ` + discordThread + `,
		"messages": {"type": "array", "items": ` + discordMessage + `},
		"github_issues": {"type": "array", "items": ` + githubIssue + `}
	},
	"required": ["channel", "messages", "github_issues"]
}`

func discordTasks() []*descriptor.Task {
	return []*descriptor.Task{
		newTask("create_github_task_airbyte", discordCreateIssuePrompt, supportTicketInput, `{
			"type": "object",
			"properties": {
				"create_issue": {"type": "boolean", "description": "Whether to create a GitHub issue"},
				"github_issue_params": `+githubIssueParams+`,
				"refusal_reason": {"type": ["string", "null"]}
			},
			"required": ["create_issue", "github_issue_params", "refusal_reason"]
		}`),

		newTask("create_github_comment_task_airbyte", discordCreateCommentPrompt, supportTicketInput, `{
			"type": "object",
			"properties": {
				"create_comment": {"type": "boolean", "description": "Whether to create a GitHub issue comment"},
				"github_comment_params": `+githubCommentParams+`,
				"refusal_reason": {"type": ["string", "null"]}
			},
			"required": ["create_comment", "github_comment_params", "refusal_reason"]
		}`),

		newTask("generate_pm_questions_for_support_ticket_airbyte", discordPMQuestionsPrompt, `{
			"type": "object",
			"properties": {
				"channel": `+discordThread+`,
				"messages": {"type": "array", "items": `+discordMessage+`}
			},
			"required": ["channel", "messages"]
		}`, `{
			"type": "object",
			"properties": {
				"pm_questions": `+nullableStringList+`,
				"refusal_reason": {"type": ["string", "null"]}
			},
			"required": ["pm_questions", "refusal_reason"]
		}`),
	}
}

func discordRouters() []*descriptor.Router {
	return []*descriptor.Router{
		newRouter(descriptor.RouterSpec{
			Name: "support_ticket_router",
			Instructions: `You are an AI assistant tasked with routing requests to create GitHub issues and/or comments based on the provided context and prompt.
Please determine whether to create a GitHub issue, create a GitHub comment, both, or neither based on the context and messages.

If you decide to create an issue or comment, you must provide the necessary parameters.`,
			Context: `Context:
{{ context }}`,
			FormatInstructions: `Set create_issue and create_comment independently and explain the decision in reason.

If create_issue is true, fill github_issue_params with owner, repo, title and body; assignee, milestone, labels and assignees are optional.
If create_comment is true, fill github_issue_comment_params with owner, repo, issue_number and body.
Leave the parameters of a branch you did not choose null.`,
			Prompt: `Prompt:
{{ prompt }}`,
		}, routerInput, `{
			"type": "object",
			"properties": {
				"create_issue": {"type": "boolean"},
				"create_comment": {"type": "boolean"},
				"reason": {"type": "string", "description": "Detailed explanation for the routing decision"},
				"github_issue_params": `+githubIssueParams+`,
				"github_issue_comment_params": `+githubCommentParams+`
			},
			"required": ["create_issue", "create_comment", "reason", "github_issue_params", "github_issue_comment_params"]
		}`),
	}
}

const supportTicketDetails = `<support_ticket_details>
Channel ID: {{ channel.id }}
Channel Name: {{ channel.name }}
Created at: {{ channel.thread_metadata.create_timestamp }}
Messages:
{% for message in messages %}
{{ message.author.username }} ({{ message.timestamp }}): {{ message.content }}
{% endfor %}
</support_ticket_details>
`

const discordCreateIssuePrompt = `You are an AI assistant for Discord, tasked with analyzing support ticket channels and deciding whether to create a GitHub issue based on the content. Your role is to determine if the support ticket warrants creating a GitHub issue and, if so, to provide the necessary parameters for creating the issue.

First, evaluate if the support ticket meets the following criteria for creating a GitHub issue:
1. The ticket contains information about a bug, feature request, or significant user problem.
2. The issue is not a simple question that can be answered without developer intervention.
3. The problem described is not already known or documented.
4. There is enough information to create a meaningful GitHub issue.

If the criteria are not met, set create_issue to false and explain why in refusal_reason.

` + supportTicketDetails + `
<existing_github_issues>
{% for issue in github_issues %}<issue>
<title>{{ issue.title }}</title>
<body>{{ issue.body }}</body>
</issue>
{% endfor %}</existing_github_issues>

Instructions for creating GitHub issue parameters:
1. Title: a concise, descriptive title prefixed with [BUG], [FEATURE], or [IMPROVEMENT].
2. Body: a detailed description with steps to reproduce, expected vs. actual behavior and error messages, formatted as markdown.
3. Labels: labels matching the nature of the issue (bug, enhancement, documentation) and its priority when the urgency is clear.
4. Assignees: team members or experts mentioned in the ticket.
5. Milestone: a known milestone or release the issue aligns with.

Use owner "airbytehq" and repo "airbyte". Check the existing GitHub issues to avoid creating duplicates.
`

const discordCreateCommentPrompt = `You are an AI assistant for Discord, tasked with analyzing support ticket channels and deciding whether to create a GitHub issue comment based on the content. Your role is to determine if the support ticket warrants adding a comment to an existing GitHub issue and, if so, to provide the necessary parameters for creating the comment.

First, evaluate if the support ticket meets the following criteria for creating a GitHub issue comment:
1. The ticket contains relevant information related to an existing GitHub issue.
2. The information provides updates, additional context, or new insights about the issue.
3. The comment would add value to the existing GitHub issue discussion.

If the criteria are not met, set create_comment to false and explain why in refusal_reason.

` + supportTicketDetails + `
<existing_github_issues>
{% for issue in github_issues %}<issue>
<number>{{ issue.number }}</number>
<title>{{ issue.title }}</title>
<body>{{ issue.body }}</body>
</issue>
{% endfor %}</existing_github_issues>

Instructions for creating GitHub issue comment parameters:
1. Issue number: the most relevant existing GitHub issue to comment on.
2. Body: a clear, concise markdown comment with the new observations, updates, or context from the support ticket.

Use owner "airbytehq" and repo "airbyte".
`

const discordPMQuestionsPrompt = `You are an AI assistant for Discord, tasked with analyzing support ticket channels. Your role is to generate a list of questions that a product manager would ask about this support ticket to gain actionable insights for product development and improvement.

First, evaluate if the support ticket meets the following criteria:
1. The ticket contains at least 3 messages.
2. The messages provide clear context about a user issue, feature request, or bug.
3. There is enough information to generate meaningful product management questions.

If the criteria are not met, leave pm_questions empty and explain why in refusal_reason.

` + supportTicketDetails + `
` + pmQuestionGuidelines
