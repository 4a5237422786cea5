package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oxidizr/askgate/internal/core/domain/question"
)

// maliciousPatterns catch script/markup injection attempts. Checked in order,
// first match wins.
var maliciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<\s*/?\s*(script|iframe|object|embed)\b`),
	regexp.MustCompile(`(?i)javascript\s*:`),
	regexp.MustCompile(`(?i)vbscript\s*:`),
	regexp.MustCompile(`(?i)\bon\w+\s*=`),
	regexp.MustCompile(`(?i)data\s*:\s*text/html`),
}

// prohibitedPatterns catch spam-style content: denylisted keywords, embedded
// URLs and email addresses.
var prohibitedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(viagra|casino|lottery|jackpot|free\s+money)\b`),
	regexp.MustCompile(`(?i)\bhttps?://\S+`),
	regexp.MustCompile(`(?i)\bwww\.\S+`),
	regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.-]+`),
}

// ValidatorService performs the text-safety checks applied before any
// upstream call. This is a defense-in-depth heuristic filter that reduces
// accidental abuse and token waste on the paid upstream, not a security
// boundary.
type ValidatorService struct{}

func NewValidatorService() *ValidatorService { return &ValidatorService{} }

// ValidateText returns nil when text is acceptable, otherwise a
// *question.ValidationError describing the first failed check.
func (v *ValidatorService) ValidateText(text string, maxLength int) error {
	if strings.TrimSpace(text) == "" {
		return &question.ValidationError{Message: "please enter your question"}
	}
	if maxLength > 0 && len(text) > maxLength {
		return &question.ValidationError{Message: fmt.Sprintf("question is too long (maximum %d characters)", maxLength)}
	}
	for _, p := range maliciousPatterns {
		if p.MatchString(text) {
			return &question.ValidationError{Message: "question contains potentially malicious content"}
		}
	}
	for _, p := range prohibitedPatterns {
		if p.MatchString(text) {
			return &question.ValidationError{Message: "question contains prohibited patterns"}
		}
	}
	return nil
}
