// Package quote separates the text a sender wrote from the quoted
// thread trailing it, and builds the quoted block for a new reply.
package quote

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

var markerRegexp = regexp.MustCompile(`(?i)^On .+ wrote:$`)

// TimestampLayout is how a parsed timestamp is rendered in a marker line.
const TimestampLayout = "Jan 2, 2006, 3:04 PM"

const separatorLine = "---"

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// SplitResult is the outcome of splitting a message body.
type SplitResult struct {
	ReplyText   string   `json:"reply_text"`
	QuotedLines []string `json:"quoted_lines"`
}

// Splitter detects quote markers. The zero value recognises only the
// marker line itself.
type Splitter struct {
	// AcceptSeparator makes a "---" line placed directly above the
	// marker (blank lines allowed in between) part of the quoted block.
	AcceptSeparator bool
}

// IsMarker reports whether line introduces a quoted block.
func IsMarker(line string) bool {
	return markerRegexp.MatchString(strings.TrimSpace(line))
}

// Split finds the first quote marker in body and returns the trimmed
// text above it and the marker plus everything below it, verbatim.
func (s Splitter) Split(body string) SplitResult {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if !IsMarker(line) {
			continue
		}
		start := i
		if s.AcceptSeparator {
			start = s.separatorStart(lines, i)
		}
		return SplitResult{
			ReplyText:   strings.TrimSpace(strings.Join(lines[:start], "\n")),
			QuotedLines: lines[start:],
		}
	}
	return SplitResult{ReplyText: strings.TrimSpace(body), QuotedLines: []string{}}
}

func (s Splitter) separatorStart(lines []string, marker int) int {
	for j := marker - 1; j >= 0; j-- {
		line := strings.TrimSpace(lines[j])
		if line == "" {
			continue
		}
		if line == separatorLine {
			return j
		}
		return marker
	}
	return marker
}

// Preview returns the reply text with whitespace collapsed, cut to at
// most maxLength characters. A body holding only quoted text falls back
// to its raw prefix.
func (s Splitter) Preview(body string, maxLength int) string {
	if maxLength <= 0 {
		return ""
	}
	reply := strings.Join(strings.Fields(s.Split(body).ReplyText), " ")
	if reply == "" {
		return truncate(body, maxLength)
	}
	return truncate(reply, maxLength)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// MarkerLine renders the "On <timestamp> <sender> wrote:" line. Line
// breaks in either argument become spaces so the result stays one line.
func MarkerLine(sender, timestamp string) string {
	sender = strings.TrimSpace(lineBreaks.Replace(sender))
	timestamp = strings.TrimSpace(lineBreaks.Replace(timestamp))
	if t, err := time.Parse(time.RFC3339, timestamp); err == nil {
		timestamp = t.Format(TimestampLayout)
	}
	if sender == "" && timestamp == "" {
		sender = "unknown sender"
	}
	return "On " + strings.TrimSpace(timestamp+" "+sender) + " wrote:"
}

// BuildQuotedReply returns two blank lines, the marker line and the
// original body, ready to be placed in a compose field.
func BuildQuotedReply(originalSender, originalTimestamp, originalBody string) string {
	return "\n\n" + MarkerLine(originalSender, originalTimestamp) + "\n" + originalBody
}

// SplitReplyAndQuote splits body with the default Splitter.
func SplitReplyAndQuote(body string) SplitResult {
	return Splitter{}.Split(body)
}

// ExtractReplyPreview is Preview with the default Splitter.
func ExtractReplyPreview(body string, maxLength int) string {
	return Splitter{}.Preview(body, maxLength)
}
