package domain

// TaskEnvelope is the response of a task execution.
type TaskEnvelope struct {
	ActionType      string         `json:"action_type"`
	ActionData      map[string]any `json:"action_data"`
	ActionEmbedding []float32      `json:"action_embedding"`
}

func (e *TaskEnvelope) Kind() string         { return "task" }
func (e *TaskEnvelope) Name() string         { return e.ActionType }
func (e *TaskEnvelope) Embedding() []float32 { return e.ActionEmbedding }

// RouterEnvelope is the response of a router execution. Branch flags inside
// RouterData are passed through as the model produced them.
type RouterEnvelope struct {
	RouterType      string         `json:"router_type"`
	RouterData      map[string]any `json:"router_data"`
	RouterEmbedding []float32      `json:"router_embedding"`
}

func (e *RouterEnvelope) Kind() string         { return "router" }
func (e *RouterEnvelope) Name() string         { return e.RouterType }
func (e *RouterEnvelope) Embedding() []float32 { return e.RouterEmbedding }

// Envelope is implemented by both envelope variants.
type Envelope interface {
	Kind() string
	Name() string
	Embedding() []float32
}
