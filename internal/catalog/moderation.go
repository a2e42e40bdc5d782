package catalog

import "github.com/taskrouter/taskrouter-api/internal/descriptor"

const moderationParams = `{
	"type": ["object", "null"],
	"properties": {
		"content_id": {"type": "string"},
		"content_type": {"type": "string", "description": "e.g. text, image, video"},
		"content": {"type": "string"},
		"reason": {"type": "string"},
		"action": {"type": "string", "description": "e.g. review, remove, approve"}
	},
	"required": ["content_id", "content_type", "content", "reason", "action"]
}`

func moderationRouters() []*descriptor.Router {
	return []*descriptor.Router{
		newRouter(descriptor.RouterSpec{
			Name: "content_moderation_router",
			Instructions: `You are an AI assistant tasked with content moderation. Based on the provided context and prompt, determine whether to flag the content for review or approve it directly.
Consider factors such as hate speech, explicit content, violence, harassment, and misinformation when making your decision.`,
			Context: `Context:
{{ context }}`,
			FormatInstructions: `Set flag_content and approve_content and explain the decision in reason.

If flag_content is true, fill flag_params with content_id, content_type, content, reason and the suggested action ("review" or "remove").
If approve_content is true, fill approve_params with content_id, content_type, content, reason and action "approve".`,
			Prompt: `Content to moderate:
{{ prompt }}`,
		}, routerInput, `{
			"type": "object",
			"properties": {
				"flag_content": {"type": "boolean"},
				"approve_content": {"type": "boolean"},
				"reason": {"type": "string"},
				"flag_params": `+moderationParams+`,
				"approve_params": `+moderationParams+`
			},
			"required": ["flag_content", "approve_content", "reason"]
		}`),
	}
}
