package wizard

// Option is one selectable answer.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Step is one single-choice question.
type Step struct {
	Question string   `json:"question"`
	Options  []Option `json:"options"`
}

// Label returns the label of the option with the given id, or "".
func (s Step) Label(id string) string {
	for _, o := range s.Options {
		if o.ID == id {
			return o.Label
		}
	}
	return ""
}

// Flow is the questionnaire for one domain: three choice steps followed by
// a free-text description step.
type Flow struct {
	Domain string `json:"domain"`
	Title  string `json:"title"`
	Steps  []Step `json:"steps"`
}

// TotalSteps counts the choice steps plus the description step.
func (f Flow) TotalSteps() int { return len(f.Steps) + 1 }

// DefaultDomain is used for domains without a questionnaire of their own.
const DefaultDomain = "coding"

var other = Option{ID: "other", Label: "Other"}

var catalog = map[string]Flow{
	"coding": {
		Domain: "coding",
		Title:  "Coding Assistant",
		Steps: []Step{
			{
				Question: "What type of project are you building?",
				Options: []Option{
					{"api", "REST API"}, {"frontend", "Frontend/UI"}, {"backend", "Backend Logic"},
					{"fullstack", "Full Stack"}, {"script", "Script/Automation"}, other,
				},
			},
			{
				Question: "Which language or framework?",
				Options: []Option{
					{"python", "Python"}, {"javascript", "JavaScript/TS"}, {"react", "React"},
					{"nodejs", "Node.js"}, {"java", "Java/Kotlin"}, other,
				},
			},
			{
				Question: "What's the complexity level?",
				Options: []Option{
					{"simple", "Simple/Basic"}, {"medium", "Intermediate"},
					{"complex", "Complex/Advanced"}, {"production", "Production-ready"},
				},
			},
		},
	},
	"data_science": {
		Domain: "data_science",
		Title:  "Data Science",
		Steps: []Step{
			{
				Question: "What's your main goal?",
				Options: []Option{
					{"analysis", "Data Analysis"}, {"prediction", "Build ML Model"}, {"visualization", "Visualization"},
					{"cleaning", "Data Cleaning"}, {"report", "Create Report"}, other,
				},
			},
			{
				Question: "Which tools will you use?",
				Options: []Option{
					{"python_pandas", "Python/Pandas"}, {"r", "R"}, {"sql", "SQL"},
					{"excel", "Excel"}, {"tableau", "Tableau/BI"}, other,
				},
			},
			{
				Question: "What type of data do you have?",
				Options: []Option{
					{"tabular", "Tabular/CSV"}, {"timeseries", "Time Series"}, {"text", "Text/NLP"},
					{"images", "Images"}, {"mixed", "Mixed Types"},
				},
			},
		},
	},
	"ai_builder": {
		Domain: "ai_builder",
		Title:  "AI Builder",
		Steps: []Step{
			{
				Question: "What type of AI are you building?",
				Options: []Option{
					{"chatbot", "Chatbot"}, {"agent", "AI Agent"}, {"classifier", "Classifier"},
					{"generator", "Content Generator"}, {"assistant", "Virtual Assistant"}, other,
				},
			},
			{
				Question: "Which platform or API?",
				Options: []Option{
					{"openai", "OpenAI/GPT"}, {"claude", "Claude/Anthropic"}, {"langchain", "LangChain"},
					{"huggingface", "Hugging Face"}, {"custom", "Custom Model"}, other,
				},
			},
			{
				Question: "What's the deployment target?",
				Options: []Option{
					{"web", "Web App"}, {"api", "API Service"}, {"mobile", "Mobile App"},
					{"slack", "Slack/Discord"}, {"standalone", "Standalone"},
				},
			},
		},
	},
	"research": {
		Domain: "research",
		Title:  "Research Assistant",
		Steps: []Step{
			{
				Question: "What type of research task?",
				Options: []Option{
					{"literature", "Literature Review"}, {"analysis", "Data Analysis"}, {"summary", "Summarization"},
					{"comparison", "Comparison Study"}, {"proposal", "Research Proposal"}, other,
				},
			},
			{
				Question: "Which field or domain?",
				Options: []Option{
					{"science", "Science/Tech"}, {"business", "Business/Finance"}, {"medical", "Medical/Health"},
					{"social", "Social Sciences"}, {"humanities", "Humanities"}, other,
				},
			},
			{
				Question: "What output format do you need?",
				Options: []Option{
					{"academic", "Academic Paper"}, {"report", "Report"}, {"presentation", "Presentation"},
					{"summary", "Brief Summary"}, {"outline", "Outline/Structure"},
				},
			},
		},
	},
}

// FlowFor returns the questionnaire for domain, falling back to coding.
func FlowFor(domain string) Flow {
	if f, ok := catalog[domain]; ok {
		return f
	}
	return catalog[DefaultDomain]
}
