package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskrouter/taskrouter-api/internal/descriptor"
	"github.com/taskrouter/taskrouter-api/internal/domain"
	"github.com/taskrouter/taskrouter-api/internal/registry"
)

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestBuild_BuiltinCatalog(t *testing.T) {
	tasks, routers, err := Build("", nil)
	require.NoError(t, err)

	tests := []struct {
		provider domain.Provider
		tasks    []string
		routers  []string
	}{
		{domain.ProviderGitHub, []string{"chat", "summarize_issue", "summarize_pr", "generate_pm_questions_for_github_issue_airbyte"}, []string{}},
		{domain.ProviderSlack, []string{"extract_keywords", "summarize_message"}, []string{}},
		{domain.ProviderDiscord, []string{"create_github_task_airbyte", "create_github_comment_task_airbyte", "generate_pm_questions_for_support_ticket_airbyte"}, []string{"support_ticket_router"}},
		{domain.ProviderSummarization, []string{"generic_summarization_task"}, []string{}},
		{domain.ProviderModeration, []string{}, []string{"content_moderation_router"}},
		{domain.ProviderRouter, []string{}, []string{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			assert.Equal(t, tt.tasks, tasks.List(tt.provider))
			assert.Equal(t, tt.routers, routers.List(tt.provider))
		})
	}

	_, err = tasks.Get(domain.ProviderRouter, "anything")
	assert.ErrorIs(t, err, domain.ErrUnknownProvider)
}

func TestNames(t *testing.T) {
	tasks, routers, err := Build("", nil)
	require.NoError(t, err)

	names := Names(tasks, routers)
	assert.Len(t, names, len(domain.Providers))
	assert.Equal(t, []string{"support_ticket_router"}, names[domain.ProviderDiscord]["routers"])
}

func renderTask(t *testing.T, tasks *registry.Registry[*descriptor.Task], provider domain.Provider, name, body string) string {
	t.Helper()
	task, err := tasks.Get(provider, name)
	require.NoError(t, err)

	input := decode(t, body)
	require.NoError(t, task.InputSchema().Validate(input))
	prompt, err := task.RenderPrompt(task.InputSchema().Flatten(input))
	require.NoError(t, err)
	return prompt.User
}

const sampleIssue = `{
	"number": 42,
	"title": "Sync fails on large tables",
	"body": "Stack trace attached",
	"state": "open",
	"created_at": "2024-05-01T10:00:00Z",
	"user": {"login": "octocat"}
}`

const sampleChannel = `{"id": "991", "name": "ticket-991", "thread_metadata": {"create_timestamp": "2024-05-02T08:00:00Z"}}`

const sampleMessages = `[
	{"author": {"username": "alice"}, "timestamp": "2024-05-02T08:01:00Z", "content": "Postgres source times out"},
	{"author": {"username": "bob"}, "timestamp": "2024-05-02T08:05:00Z", "content": "Which version?"}
]`

func TestBuiltinTasksRender(t *testing.T) {
	tasks, _, err := Build("", nil)
	require.NoError(t, err)

	tests := []struct {
		provider domain.Provider
		name     string
		body     string
		contains []string
	}{
		{
			domain.ProviderGitHub, "chat",
			`{"messages": [{"role": "user", "content": "How do I rebase?"}]}`,
			[]string{"No context available.", "user: How do I rebase?"},
		},
		{
			domain.ProviderGitHub, "summarize_issue",
			`{"issue": ` + sampleIssue + `, "comments": [{"user": {"login": "hubot"}, "created_at": "2024-05-01T11:00:00Z", "body": "Same here"}]}`,
			[]string{"Number: #42", "Created by: octocat", "hubot (2024-05-01T11:00:00Z): Same here"},
		},
		{
			domain.ProviderGitHub, "summarize_pr",
			`{"pull_request": ` + sampleIssue + `, "comments": []}`,
			[]string{"Title: Sync fails on large tables", "State: open"},
		},
		{
			domain.ProviderGitHub, "generate_pm_questions_for_github_issue_airbyte",
			`{"issue": ` + sampleIssue + `, "comments": [], "diff": "+ retry()"}`,
			[]string{"Pull Request Diff:\n+ retry()", "Body: Stack trace attached"},
		},
		{
			domain.ProviderSlack, "extract_keywords",
			`{"context": ["release week"], "messages": ["deploy is blocked", "rollback done"]}`,
			[]string{"release week", "deploy is blocked"},
		},
		{
			domain.ProviderSlack, "summarize_message",
			`{"message": {"user_id": "U1", "channel_id": "C1", "timestamp": "1714550000.0001", "text": "Standup moved to 10"}}`,
			[]string{"Sender: U1", "Content: Standup moved to 10"},
		},
		{
			domain.ProviderDiscord, "create_github_task_airbyte",
			`{"channel": ` + sampleChannel + `, "messages": ` + sampleMessages + `, "github_issues": [` + sampleIssue + `]}`,
			[]string{"Channel Name: ticket-991", "alice (2024-05-02T08:01:00Z): Postgres source times out", "<title>Sync fails on large tables</title>"},
		},
		{
			domain.ProviderDiscord, "create_github_comment_task_airbyte",
			`{"channel": ` + sampleChannel + `, "messages": ` + sampleMessages + `, "github_issues": [` + sampleIssue + `]}`,
			[]string{"<number>42</number>"},
		},
		{
			domain.ProviderDiscord, "generate_pm_questions_for_support_ticket_airbyte",
			`{"channel": ` + sampleChannel + `, "messages": ` + sampleMessages + `}`,
			[]string{"Created at: 2024-05-02T08:00:00Z", "bob (2024-05-02T08:05:00Z): Which version?"},
		},
		{
			domain.ProviderSummarization, "generic_summarization_task",
			`{"content": "Go is a language.", "max_length": 200, "focus_areas": ["tooling"]}`,
			[]string{"Go is a language.", "Maximum summary length: 200 characters", "- tooling"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt := renderTask(t, tasks, tt.provider, tt.name, tt.body)
			for _, want := range tt.contains {
				assert.Contains(t, prompt, want)
			}
		})
	}
}

func TestSummarizationOptionalFieldsOmitted(t *testing.T) {
	tasks, _, err := Build("", nil)
	require.NoError(t, err)

	prompt := renderTask(t, tasks, domain.ProviderSummarization, "generic_summarization_task", `{"content": "text"}`)
	assert.NotContains(t, prompt, "Maximum summary length")
	assert.NotContains(t, prompt, "Focus areas")
}

func TestBuiltinRoutersRender(t *testing.T) {
	_, routers, err := Build("", nil)
	require.NoError(t, err)

	r, err := routers.Get(domain.ProviderModeration, "content_moderation_router")
	require.NoError(t, err)

	input := decode(t, `{"context": "forum post", "prompt": "buy cheap watches"}`)
	require.NoError(t, r.InputSchema().Validate(input))
	prompt, err := r.RenderPrompt(input)
	require.NoError(t, err)

	require.Len(t, prompt.Instructions, 3)
	assert.Contains(t, prompt.Instructions[0], "content moderation")
	assert.Equal(t, "Context:\nforum post", prompt.Instructions[1])
	assert.Equal(t, "Content to moderate:\nbuy cheap watches", prompt.User)

	assert.Error(t, r.InputSchema().Validate(decode(t, `{"context": "only"}`)))
}

func TestRouterOutputAcceptsBothFlags(t *testing.T) {
	_, routers, err := Build("", nil)
	require.NoError(t, err)
	r, err := routers.Get(domain.ProviderDiscord, "support_ticket_router")
	require.NoError(t, err)

	out := decode(t, `{
		"create_issue": true,
		"create_comment": true,
		"reason": "both",
		"github_issue_params": null,
		"github_issue_comment_params": null
	}`)
	assert.NoError(t, r.OutputSchema().Validate(out))
}

const overlayYAML = `
tasks:
  - provider: github
    name: chat
    prompt: "Overridden: {{ question }}"
    input_schema:
      type: object
      properties:
        question: {type: string}
      required: [question]
    output_schema:
      type: object
      properties:
        answer: {type: string}
      required: [answer]
  - provider: Slack
    name: triage
    prompt: "{{ text }}"
    input_schema:
      type: object
      properties:
        text: {type: string}
    output_schema:
      type: object
      properties:
        label: {type: string}
routers:
  - provider: moderation
    name: spam_router
    instructions: "Spam or not."
    context: "{{ context }}"
    format_instructions: "Set is_spam."
    prompt: "{{ prompt }}"
    input_schema:
      type: object
      properties:
        context: {type: string}
        prompt: {type: string}
    output_schema:
      type: object
      properties:
        is_spam: {type: boolean}
`

func TestOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(overlayYAML), 0o600))

	tasks, routers, err := Build(path, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"chat", "summarize_issue", "summarize_pr", "generate_pm_questions_for_github_issue_airbyte"},
		tasks.List(domain.ProviderGitHub), "an overridden task keeps its position")
	chat, err := tasks.Get(domain.ProviderGitHub, "chat")
	require.NoError(t, err)
	assert.Equal(t, "Overridden: {{ question }}", chat.PromptTemplate())

	assert.Contains(t, tasks.List(domain.ProviderSlack), "triage")
	assert.Equal(t, []string{"content_moderation_router", "spam_router"}, routers.List(domain.ProviderModeration))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown provider", `
tasks:
  - provider: jira
    name: x
    prompt: "{{ a }}"
    input_schema: {type: object}
    output_schema: {type: object}
`},
		{"template syntax", `
tasks:
  - provider: github
    name: x
    prompt: "{% if a %}unterminated"
    input_schema: {type: object}
    output_schema: {type: object}
`},
		{"missing schema", `
routers:
  - provider: moderation
    name: x
    prompt: "{{ prompt }}"
    input_schema: {type: object}
`},
		{"non-object schema", `
tasks:
  - provider: github
    name: x
    prompt: "hi"
    input_schema: {type: string}
    output_schema: {type: object}
`},
		{"not yaml", "tasks: [unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
