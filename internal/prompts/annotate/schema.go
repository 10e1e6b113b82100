package annotate

// ResponseSchema only requires an object. Field values are deliberately
// untyped here; annotate.Normalize coerces whatever comes back.
var ResponseSchema = map[string]any{
	"name":   "post_metadata",
	"strict": false,
	"schema": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"line_count": map[string]any{
				"description": "Number of lines in the post",
			},
			"language": map[string]any{
				"description": "English or Hinglish",
			},
			"tags": map[string]any{
				"type":        []string{"array", "string", "null"},
				"description": "2-4 topic tags",
			},
			"length": map[string]any{
				"description": "Short, Medium or Long",
			},
			"tone": map[string]any{
				"description": "Professional, Casual, Humorous, Inspirational or Educational",
			},
			"target_audience": map[string]any{
				"description": "Students, Professionals, Job Seekers, Entrepreneurs or General",
			},
		},
	},
}
