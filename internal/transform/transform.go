// Package transform rewrites raw message bodies into Markdown-safe inline
// HTML and resolves per-message display metadata.
//
// The rewrite is an ordered sequence of independent passes. Order matters:
// mention and channel tokens are resolved before emoji substitution, block
// constructs (quotes, code fences) are converted next, and only then are
// the remaining raw newlines turned into <br> tags, so no pass re-triggers
// an earlier one.
package transform

import (
	"regexp"
	"strings"

	"github.com/arlberg/slack2md/internal/models"
)

var (
	mentionRe    = regexp.MustCompile(`<@([A-Z0-9]+)(?:\|([^>]+))?>`)
	channelRefRe = regexp.MustCompile(`<#([A-Z0-9]+)(?:\|([^>]+))?>`)
	codeFenceRe  = regexp.MustCompile("(?s)```\n?(.*?)(?:```|$)")
)

type pass func(string) string

// Transformer applies the full rewrite chain for one conversion run. It
// holds the read-only channel and user directories and is safe to reuse
// across messages.
type Transformer struct {
	passes []pass
}

// New builds a Transformer over the workspace directories.
func New(ws *models.Workspace) *Transformer {
	t := &Transformer{}
	t.passes = []pass{
		mentions(ws.Users),
		channelRefs(ws.Channels),
		emojiCodes,
		blockQuotes,
		codeBlocks,
		lineBreaks,
	}
	return t
}

// Apply runs every pass over text, in order.
func (t *Transformer) Apply(text string) string {
	for _, p := range t.passes {
		text = p(text)
	}
	return text
}

// mentions replaces <@U…> tokens with the user's display name in inline
// code. An unresolvable id degrades to the token's own label if present,
// else the raw id.
func mentions(users map[string]models.User) pass {
	return func(text string) string {
		return mentionRe.ReplaceAllStringFunc(text, func(tok string) string {
			sub := mentionRe.FindStringSubmatch(tok)
			id, label := sub[1], sub[2]
			name := id
			if u, ok := users[id]; ok {
				name = u.DisplayName
				if name == "" {
					name = u.Name
				}
			} else if label != "" {
				name = label
			}
			return "`@" + name + "`"
		})
	}
}

// channelRefs replaces <#C…> tokens with the channel name in inline code,
// with the same fallback chain as mentions.
func channelRefs(channels map[string]models.Channel) pass {
	return func(text string) string {
		return channelRefRe.ReplaceAllStringFunc(text, func(tok string) string {
			sub := channelRefRe.FindStringSubmatch(tok)
			id, label := sub[1], sub[2]
			name := id
			if c, ok := channels[id]; ok {
				name = c.Name
			} else if label != "" {
				name = label
			}
			return "`#" + name + "`"
		})
	}
}

// blockQuotes folds each run of consecutive quoted lines (leading ">" or
// its escaped form "&gt;") into a single blockquote element. The marker is
// stripped and the quoted lines are <br>-joined, matching the plain-text
// line-break rule.
func blockQuotes(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	var quoted []string

	flush := func() {
		if len(quoted) == 0 {
			return
		}
		out = append(out, "<blockquote>"+strings.Join(quoted, "<br>")+"</blockquote>")
		quoted = nil
	}

	for _, line := range lines {
		if stripped, ok := stripQuoteMarker(line); ok {
			quoted = append(quoted, stripped)
			continue
		}
		flush()
		out = append(out, line)
	}
	flush()
	return strings.Join(out, "\n")
}

func stripQuoteMarker(line string) (string, bool) {
	for _, marker := range []string{"&gt;", ">"} {
		if rest, ok := strings.CutPrefix(line, marker); ok {
			return strings.TrimPrefix(rest, " "), true
		}
	}
	return "", false
}

// codeBlocks converts fenced code spans into <pre> elements. Internal line
// breaks become <br> tags so the block renders inside one table cell. An
// unterminated fence extends to the end of the text.
func codeBlocks(text string) string {
	return codeFenceRe.ReplaceAllStringFunc(text, func(block string) string {
		body := codeFenceRe.FindStringSubmatch(block)[1]
		body = strings.TrimSuffix(body, "\n")
		return "<pre>" + strings.ReplaceAll(body, "\n", "<br>") + "</pre>"
	})
}

// lineBreaks converts every remaining raw newline into a <br> tag.
func lineBreaks(text string) string {
	return strings.ReplaceAll(text, "\n", "<br>")
}
