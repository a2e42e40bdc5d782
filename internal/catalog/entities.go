package catalog

// JSON Schema fragments for the upstream records the catalog templates read.
// Additional properties are allowed so that full API payloads validate.

const githubUser = `{
	"type": "object",
	"properties": {"login": {"type": "string"}},
	"required": ["login"]
}`

const githubIssue = `{
	"type": "object",
	"description": "A GitHub issue or pull request as stored by the ingestion pipeline",
	"properties": {
		"number": {"type": "integer"},
		"title": {"type": "string"},
		"body": {"type": ["string", "null"]},
		"state": {"type": "string"},
		"created_at": {"type": "string"},
		"user": ` + githubUser + `
	},
	"required": ["number", "title", "state", "created_at", "user"]
}`

const githubComment = `{
	"type": "object",
	"properties": {
		"body": {"type": ["string", "null"]},
		"created_at": {"type": "string"},
		"user": ` + githubUser + `
	},
	"required": ["body", "created_at", "user"]
}`

const githubPullRequest = `{
	"type": "object",
	"properties": {
		"number": {"type": "integer"},
		"title": {"type": "string"},
		"body": {"type": ["string", "null"]},
		"state": {"type": "string"},
		"created_at": {"type": "string"},
		"user": ` + githubUser + `
	},
	"required": ["number", "title", "state", "created_at", "user"]
}`

const discordThread = `{
	"type": "object",
	"description": "A Discord support ticket thread",
	"properties": {
		"id": {"type": "string"},
		"name": {"type": "string"},
		"thread_metadata": {
			"type": ["object", "null"],
			"properties": {"create_timestamp": {"type": ["string", "null"]}}
		}
	},
	"required": ["id", "name"]
}`

const discordMessage = `{
	"type": "object",
	"properties": {
		"id": {"type": "string"},
		"content": {"type": "string"},
		"timestamp": {"type": "string"},
		"author": {
			"type": "object",
			"properties": {"username": {"type": "string"}},
			"required": ["username"]
		}
	},
	"required": ["content", "timestamp", "author"]
}`

const slackMessage = `{
	"type": "object",
	"properties": {
		"user_id": {"type": "string"},
		"channel_id": {"type": "string"},
		"timestamp": {"type": "string"},
		"text": {"type": "string"}
	},
	"required": ["user_id", "channel_id", "timestamp", "text"]
}`

const githubIssueParams = `{
	"type": ["object", "null"],
	"properties": {
		"owner": {"type": "string", "description": "The owner of the repository"},
		"repo": {"type": "string", "description": "The name of the repository"},
		"title": {"type": "string", "description": "The title of the issue"},
		"body": {"type": ["string", "null"], "description": "The body text of the issue"},
		"assignee": {"type": ["string", "null"], "description": "The username of the user to assign the issue to"},
		"milestone": {"type": ["string", "null"], "description": "The milestone to associate this issue with"},
		"labels": {"type": ["array", "null"], "items": {"type": "string"}, "description": "Labels to apply to this issue"},
		"assignees": {"type": ["array", "null"], "items": {"type": "string"}, "description": "Usernames to assign the issue to"}
	},
	"required": ["owner", "repo", "title", "body", "assignee", "milestone", "labels", "assignees"]
}`

const githubCommentParams = `{
	"type": ["object", "null"],
	"properties": {
		"owner": {"type": "string", "description": "The owner of the repository"},
		"repo": {"type": "string", "description": "The name of the repository"},
		"issue_number": {"type": "integer", "description": "The number of the issue to comment on"},
		"body": {"type": "string", "description": "The body text of the comment"}
	},
	"required": ["owner", "repo", "issue_number", "body"]
}`

const stringList = `{"type": "array", "items": {"type": "string"}}`

const nullableStringList = `{"type": ["array", "null"], "items": {"type": "string"}}`
