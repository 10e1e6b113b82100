package generate

import "github.com/jackzampolin/postgen/internal/post"

// Writing styles offered by the custom prompt.
var Styles = []string{"Storytelling", "List Format", "Question-Answer", "Tips & Tricks", "Personal Reflection"}

// Purposes offered by the custom prompt.
var Purposes = []string{"Share Experience", "Give Advice", "Ask Question", "Celebrate Achievement", "Educational"}

var styleGuidelines = map[string]string{
	"Storytelling":        "Structure as a narrative with beginning, middle, and end. Use personal anecdotes.",
	"List Format":         "Present information in numbered points or bullet format for easy readability.",
	"Question-Answer":     "Start with a compelling question and provide thoughtful answers.",
	"Tips & Tricks":       "Focus on actionable advice and practical insights.",
	"Personal Reflection": "Share personal experiences, lessons learned, and honest insights.",
}

var audienceGuidelines = map[post.Audience]string{
	post.Students:      "Use relatable college/university experiences, learning journey, academic challenges.",
	post.Professionals: "Focus on career growth, workplace insights, professional development.",
	post.Entrepreneurs: "Emphasize business insights, startup journey, leadership lessons.",
	post.JobSeekers:    "Address job search challenges, interview tips, career transition advice.",
	post.General:       "Keep content broadly relatable and universally valuable.",
}

var purposeGuidelines = map[string]string{
	"Share Experience":      "Be authentic and share genuine personal experiences with lessons learned.",
	"Give Advice":           "Provide actionable tips and insights based on experience.",
	"Ask Question":          "Engage audience with thought-provoking questions that encourage interaction.",
	"Celebrate Achievement": "Share accomplishments while remaining humble and inspiring others.",
	"Educational":           "Focus on teaching something valuable with clear, actionable information.",
}

// StyleGuideline returns the instruction for a writing style.
func StyleGuideline(style string) string {
	if g, ok := styleGuidelines[style]; ok {
		return g
	}
	return "Write in an engaging and authentic manner."
}

// AudienceGuideline returns the instruction for a target audience.
func AudienceGuideline(a post.Audience) string {
	if g, ok := audienceGuidelines[a]; ok {
		return g
	}
	return "Keep content relevant and valuable."
}

// PurposeGuideline returns the instruction for a post purpose.
func PurposeGuideline(purpose string) string {
	if g, ok := purposeGuidelines[purpose]; ok {
		return g
	}
	return "Create valuable and engaging content."
}
