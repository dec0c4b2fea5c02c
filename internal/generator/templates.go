package generator

import "strings"

// TemplatePhaseCount is the number of phases every template defines.
const TemplatePhaseCount = 4

// TemplateKind selects one of the fixed journey templates.
type TemplateKind string

const (
	TemplateScience    TemplateKind = "science"
	TemplateHumanities TemplateKind = "humanities"
	TemplateArts       TemplateKind = "arts"
	TemplateGeneric    TemplateKind = "generic"
)

type phaseTemplate struct {
	name       string
	summary    string
	activities []string
}

var templates = map[TemplateKind][]phaseTemplate{
	TemplateScience: {
		{
			name:       "Launch & Wonder",
			summary:    "Students encounter a real phenomenon in {topic} and generate questions that will drive the investigation.",
			activities: []string{"Phenomenon observation", "Question generation", "Driving question board"},
		},
		{
			name:       "Investigate",
			summary:    "Teams design and run investigations into {topic}, collecting and analyzing evidence.",
			activities: []string{"Hypothesis writing", "Controlled experiment", "Data collection and graphing"},
		},
		{
			name:       "Design & Build",
			summary:    "Students apply their findings to develop a {deliverable}, testing and iterating on their design.",
			activities: []string{"Prototype sketching", "Build and test cycles", "Peer feedback"},
		},
		{
			name:       "Share & Reflect",
			summary:    "Students present their {deliverable} to {audience} and reflect on what they learned about {topic}.",
			activities: []string{"Presentation rehearsal", "Public showcase", "Reflection journal"},
		},
	},
	TemplateHumanities: {
		{
			name:       "Enter the Story",
			summary:    "Students meet the people, places and tensions at the heart of {topic}.",
			activities: []string{"Primary source gallery walk", "Essential question discussion", "Know/wonder chart"},
		},
		{
			name:       "Dig Into Sources",
			summary:    "Students research {topic} through primary and secondary sources, weighing multiple perspectives.",
			activities: []string{"Source analysis", "Perspective mapping", "Interview planning"},
		},
		{
			name:       "Construct the Argument",
			summary:    "Teams synthesize evidence into a {deliverable} that takes a clear, supported position.",
			activities: []string{"Claim and evidence outline", "Drafting workshop", "Peer critique"},
		},
		{
			name:       "Go Public",
			summary:    "Students share their {deliverable} with {audience} and consider how {topic} connects to today.",
			activities: []string{"Exhibition preparation", "Community presentation", "Written reflection"},
		},
	},
	TemplateArts: {
		{
			name:       "Inspiration",
			summary:    "Students explore works and artists connected to {topic} to spark their own ideas.",
			activities: []string{"Artist study", "Mood board", "Sketchbook prompts"},
		},
		{
			name:       "Skill Building",
			summary:    "Students practice the techniques they need to create a {deliverable}.",
			activities: []string{"Technique demonstrations", "Guided practice", "Material experiments"},
		},
		{
			name:       "Studio Creation",
			summary:    "Students create and refine their {deliverable} through critique and revision.",
			activities: []string{"Studio work time", "Gallery critique", "Revision planning"},
		},
		{
			name:       "Exhibition",
			summary:    "Students curate and present their {deliverable} to {audience}, articulating their creative choices.",
			activities: []string{"Artist statement writing", "Exhibition install", "Audience talkback"},
		},
	},
	TemplateGeneric: {
		{
			name:       "Launch",
			summary:    "Students are introduced to {topic} and the challenge they will take on.",
			activities: []string{"Entry event", "Team formation", "Need-to-know list"},
		},
		{
			name:       "Build Knowledge",
			summary:    "Students build the understanding of {topic} they need to respond to the challenge.",
			activities: []string{"Mini-lessons", "Research workshops", "Expert conversation"},
		},
		{
			name:       "Develop & Critique",
			summary:    "Teams develop a {deliverable}, improving it through feedback and revision.",
			activities: []string{"Drafting", "Critique protocol", "Revision"},
		},
		{
			name:       "Present",
			summary:    "Students present their {deliverable} to {audience} and reflect on their learning.",
			activities: []string{"Rehearsal", "Public presentation", "Reflection"},
		},
	},
}

var templateKeywords = []struct {
	kind     TemplateKind
	keywords []string
}{
	{TemplateScience, []string{"science", "stem", "biology", "chemistry", "physics", "engineering", "ecology", "environment", "math", "technology", "earth"}},
	{TemplateHumanities, []string{"history", "social", "humanities", "civics", "government", "geography", "literature", "english", "language", "culture"}},
	{TemplateArts, []string{"art", "arts", "music", "theater", "theatre", "dance", "design", "film", "media", "drama"}},
}

// SelectTemplate picks a template from keywords in the subject text.
func SelectTemplate(subject string) TemplateKind {
	words := strings.FieldsFunc(strings.ToLower(subject), func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	})
	for _, entry := range templateKeywords {
		for _, w := range words {
			for _, k := range entry.keywords {
				if w == k {
					return entry.kind
				}
			}
		}
	}
	return TemplateGeneric
}

func fillPlaceholders(text string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
