package models

// NoLine marks a missing line attribution
const NoLine = -1

// SourceContent attributes an occurrence to a file and a line window
type SourceContent struct {
	Content         string `json:"content"`
	Filename        string `json:"filename"`
	StartLine       int    `json:"start_line"`
	EndLine         int    `json:"end_line"`
	ExactMatchLines []int  `json:"exact_match_lines"`
}

// IsAttributed reports whether the content was mapped to original source
// lines. The window may start before line 1 for matches near the top of a
// file, so only the matched lines are checked.
func (s SourceContent) IsAttributed() bool {
	for _, l := range s.ExactMatchLines {
		if l != NoLine {
			return true
		}
	}
	return false
}

func (s SourceContent) clone() SourceContent {
	out := s
	if s.ExactMatchLines != nil {
		out.ExactMatchLines = append([]int(nil), s.ExactMatchLines...)
	}
	return out
}
