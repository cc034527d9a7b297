package types

type Sample struct {
	BuggyCode string `json:"buggy_code"`
	FixedCode string `json:"fixed_code"`
	Language  string `json:"language"`
	BugType   string `json:"bug_type"`
}
