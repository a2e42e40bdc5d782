package catalog

import "github.com/taskrouter/taskrouter-api/internal/descriptor"

func githubTasks() []*descriptor.Task {
	return []*descriptor.Task{
		newTask("chat", githubChatPrompt, `{
			"type": "object",
			"properties": {
				"context": {"type": ["array", "null"], "items": {"type": "string"}},
				"messages": {
					"type": "array",
					"items": {"type": "object", "additionalProperties": {"type": "string"}}
				}
			},
			"required": ["messages"]
		}`, `{
			"type": "object",
			"properties": {
				"response": {"type": "string"},
				"reason": {"type": "string"},
				"title": {"type": "string"}
			},
			"required": ["response", "reason", "title"]
		}`),

		newTask("summarize_issue", githubIssueSummaryPrompt, `{
			"type": "object",
			"properties": {
				"issue": `+githubIssue+`,
				"comments": {"type": "array", "items": `+githubComment+`}
			},
			"required": ["issue", "comments"]
		}`, `{
			"type": "object",
			"properties": {
				"summary": {"type": "string", "description": "Concise summary of the issue and its comments"},
				"key_points": `+stringList+`,
				"decisions": `+stringList+`,
				"current_status": {"type": "string", "description": "Current status of the issue based on the comments"}
			},
			"required": ["summary", "key_points", "decisions", "current_status"]
		}`),

		newTask("summarize_pr", githubPRSummaryPrompt, `{
			"type": "object",
			"properties": {
				"pull_request": `+githubPullRequest+`,
				"comments": {"type": "array", "items": `+githubComment+`}
			},
			"required": ["pull_request", "comments"]
		}`, `{
			"type": "object",
			"properties": {
				"summary": {"type": "string"},
				"key_points": `+stringList+`,
				"suggested_reviewers": `+stringList+`,
				"estimated_complexity": {"type": "string", "enum": ["Low", "Medium", "High"]},
				"potential_conflicts": `+stringList+`,
				"next_steps": `+stringList+`
			},
			"required": ["summary", "key_points", "suggested_reviewers", "estimated_complexity", "potential_conflicts", "next_steps"]
		}`),

		newTask("generate_pm_questions_for_github_issue_airbyte", githubPMQuestionsPrompt, `{
			"type": "object",
			"properties": {
				"issue": `+githubIssue+`,
				"comments": {"type": "array", "items": `+githubComment+`},
				"diff": {"type": ["string", "null"], "description": "The diff of the pull request if it exists"}
			},
			"required": ["issue", "comments", "diff"]
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

const githubChatPrompt = `You are an AI assistant for GitHub, a developer support platform. Your role is to provide helpful and consistent support across multiple interactions, maintaining context throughout the conversation.

Context:
{% if context %}{% for context_item in context %}
{{ context_item }}
{% endfor %}{% else %}
No context available.
{% endif %}
Chat History:
{% for message in messages %}
{{ message.role }}: {{ message.content }}
{% endfor %}
Please provide a helpful response to the user's latest message, taking into account the entire conversation history. Your response should be informative, friendly, and tailored to the user's needs.

Provide your analysis using the following format:
Response: <your response to the user's latest message>
Reason: <explanation of your response, including how it relates to the conversation history>
Title: <concise summary of the current state of the conversation>
`

const githubIssueSummaryPrompt = `You are an AI assistant for GitHub, tasked with summarizing issue comments. Your role is to provide a concise and informative summary of the discussion in a GitHub issue.

Issue Details:
Title: {{ issue.title }}
Number: #{{ issue.number }}
State: {{ issue.state }}
Created by: {{ issue.user.login }}
Created at: {{ issue.created_at }}

Comments:
{% for comment in comments %}
{{ comment.user.login }} ({{ comment.created_at }}): {{ comment.body }}
{% endfor %}
Please provide a summary of the issue and its comments, highlighting the main points of discussion, any decisions made, and the current status of the issue.

Provide your analysis using the following format:
Summary: <concise summary of the issue and its comments>
Key Points: <list of key points discussed>
Decisions: <any decisions made or action items>
Current Status: <current status of the issue based on the comments>
`

const githubPRSummaryPrompt = `You are an AI assistant for GitHub, tasked with summarizing pull request details and comments. Your role is to provide a concise and informative summary of the pull request discussion.

Pull Request Details:
Title: {{ pull_request.title }}
Number: #{{ pull_request.number }}
State: {{ pull_request.state }}
Created by: {{ pull_request.user.login }}
Created at: {{ pull_request.created_at }}

Comments:
{% for comment in comments %}
{{ comment.user.login }} ({{ comment.created_at }}): {{ comment.body }}
{% endfor %}
Please provide a summary of the pull request and its comments, highlighting the main points of discussion, suggested reviewers, estimated complexity, potential conflicts, and next steps.

Provide your analysis using the following format:
Summary: <concise summary of the pull request and its comments>
Key Points: <list of key points extracted from the pull request and comments>
Suggested Reviewers: <list of suggested reviewers based on the content>
Estimated Complexity: <estimated complexity of the PR: Low, Medium, or High>
Potential Conflicts: <list of potential conflicts or issues identified in the PR>
Next Steps: <list of suggested next steps for the PR>
`

const githubPMQuestionsPrompt = `<role>
You are an AI assistant for GitHub, tasked with analyzing issues, pull requests, and their comments. Your role is to generate a list of questions that a product manager would ask about this GitHub issue or pull request to gain actionable insights for product development and improvement.
</role>

<evaluation_criteria>
First, evaluate if the GitHub issue or pull request meets the following criteria:
1. The issue/PR contains at least 2 comments (including the initial description) OR has a Pull Request diff.
2. The issue/PR, comments, and/or diff provide clear context about a user issue, feature request, bug, or code change.
3. There is enough information to generate meaningful product management questions.

If the criteria are not met, leave pm_questions empty and explain why in refusal_reason.
</evaluation_criteria>

<issue_pr_details>
Number: {{ issue.number }}
Title: {{ issue.title }}
Created at: {{ issue.created_at }}
State: {{ issue.state }}
Author: {{ issue.user.login }}
Body: {{ issue.body }}

Comments:
{% for comment in comments %}
{{ comment.user.login }} ({{ comment.created_at }}): {{ comment.body }}
{% endfor %}
{% if diff %}
Pull Request Diff:
{{ diff }}
{% endif %}
</issue_pr_details>

<instructions>
` + pmQuestionGuidelines + `
Also consider, where relevant: pull request diff analysis, code quality and maintainability, performance implications, security considerations, scalability and future-proofing.
</instructions>

<goal>
Generate questions that help product managers gain deep insights into user needs, technical challenges, and strategic opportunities based on this specific GitHub issue.
</goal>
`

// pmQuestionGuidelines is shared by the GitHub and Discord question generators.
const pmQuestionGuidelines = `Terminology consistency:
- Use the exact terminology of the source (technologies such as Prisma, techniques such as batching) consistently in all questions.
- Keep the technical specificity of the source, including its abbreviations.

Specificity and context:
- Use exact error messages, technical terms, and product names from the source.
- Reference the configurations, settings, or environments described by the user.
- Address the particular use case, workflow, or code change mentioned.

Product management focus:
- Frame questions from a product management perspective using PM terminology.
- Focus on strategic implications, user impact, and product improvements.

Categorization:
- Start every question with 5 to 7 ALL CAPS category tags, for example [UX][BUG][PERFORMANCE][PRISMA][DATABASE].
- For technology-specific sources always include the technology name as a category.
- Categories include but are not limited to: [UX] [PAIN_POINTS] [ONBOARDING] [FEATURE_REQUEST] [PRODUCT_IMPROVEMENT] [BUG] [TECHNICAL_ISSUE] [USER_ENGAGEMENT] [RETENTION] [COMPETITIVE_ANALYSIS] [MARKET_TRENDS] [USER_SEGMENTS] [PRODUCT_ROADMAP] [CUSTOMER_SUPPORT] [AUTOMATION] [PROCESS_IMPROVEMENT] [DEPLOYMENT] [ERROR_HANDLING] [PACKAGE_MANAGEMENT] [COMPATIBILITY] [DOCUMENTATION] [CONFIGURATION] [PERFORMANCE] [SCALABILITY] [MONITORING] [ALERTING] [VISIBILITY] [VERSION_CONTROL] [ANALYTICS] [USER_BEHAVIOR] [SECURITY] [DATA_PRIVACY] [INTEGRATION] [API] [TESTING] [CI_CD] [OPTIMIZATION] [ARCHITECTURE] [DATABASE] [CACHING] [INFRASTRUCTURE] [CLOUD_SERVICES] [MACHINE_LEARNING] [AI] [COMPLIANCE] [LOCALIZATION] [ACCESSIBILITY]

Aspects to cover:
1. User experience and pain points
2. Feature requests and product improvements
3. Bug reports and technical issues
4. User engagement and retention
5. Competitive analysis
6. Market trends and user needs
7. Impact on different user segments
8. Product roadmap implications
9. Customer support efficiency and quality
10. Opportunities for automation or process improvement

Output format:
Each question is one list entry without numbering or bullet points, for example
[CATEGORY1][CATEGORY2][CATEGORY3][CATEGORY4][CATEGORY5] <Detailed, context-rich question using PM terminology and specific terms from the source>

Aim for at least 15 diverse questions. Each question must be specific to the source, use consistent technical terms, address a unique aspect of the problem or a potential solution, and provide actionable insight.
`
