package exam

// Option is one selectable answer. The body is an opaque rich-text document;
// the engine never interprets it.
type Option struct {
	ID       string `json:"id"`
	BodyHTML string `json:"body_html,omitempty"`
	Correct  bool   `json:"correct"`
}

// Question carries its options in the order they should be presented.
// A question has at least one option. A question with exactly one option is
// counted correct as soon as any selection is made.
type Question struct {
	ID                string   `json:"id"`
	BodyHTML          string   `json:"body_html,omitempty"`
	JustificationHTML string   `json:"justification_html,omitempty"`
	CategoryID        string   `json:"category_id,omitempty"`
	CategoryName      string   `json:"category_name,omitempty"`
	Options           []Option `json:"options"`
}

// Category is a grouping key for shuffling and labeling. It carries no
// scoring weight.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Definition is the exam policy plus question pool supplied by the platform
// backend. CategoryQuotas, when present, limits how many questions of each
// category make it into an attempt.
type Definition struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	DurationMin    int            `json:"duration_min"`
	FreeNavigation bool           `json:"free_navigation"`
	ReviewEnabled  bool           `json:"review_enabled"`
	Questions      []Question     `json:"questions"`
	CategoryQuotas map[string]int `json:"category_quotas,omitempty"`
}

// Result is the frozen outcome of an attempt, written once to durable
// storage and read by the results and review views.
type Result struct {
	AttemptID           string             `json:"attempt_id"`
	ExamID              string             `json:"exam_id"`
	ExamName            string             `json:"exam_name"`
	Questions           []Question         `json:"questions"` // final randomized order
	UserAnswers         map[string]*string `json:"user_answers"`
	TimeSpentSeconds    int                `json:"time_spent_seconds"`
	TakerName           string             `json:"taker_name"`
	TakerEmail          string             `json:"taker_email"`
	Score               float64            `json:"score"` // 0-100
	TotalQuestions      int                `json:"total_questions"`
	TotalAnswered       int                `json:"total_answered"`
	PercentageAnswered  float64            `json:"percentage_answered"`
	CorrectAnswers      int                `json:"correct_answers"`
	IncorrectAnswers    int                `json:"incorrect_answers"`
	UnansweredQuestions int                `json:"unanswered_questions"`
	ReviewEnabled       bool               `json:"review_enabled"`
}
