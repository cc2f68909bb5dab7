package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

const (
	reportMinWidth = 20
	causeBanner    = "was the direct cause of"
)

// Report renders err and its cause chain as a bordered block of the given
// width. The root cause is printed first; each following section is the error
// it caused.
func Report(err error, width int) string {
	if err == nil {
		return ""
	}
	if width < reportMinWidth {
		width = reportMinWidth
	}
	inner := width - 4

	chain := unwrapChain(err)
	border := "+" + strings.Repeat("-", width-2) + "+"

	var b strings.Builder
	b.WriteString(border + "\n")
	b.WriteString(boxLine(center(typeName(err), inner), inner) + "\n")
	b.WriteString(border + "\n")
	for i := len(chain) - 1; i >= 0; i-- {
		for _, line := range wrapText(sectionText(chain[i]), inner) {
			b.WriteString(boxLine(line, inner) + "\n")
		}
		if i > 0 {
			b.WriteString(causeBar(width) + "\n")
		}
	}
	b.WriteString(border)
	return b.String()
}

// unwrapChain lists err followed by each successive cause.
func unwrapChain(err error) []error {
	var chain []error
	for err != nil {
		chain = append(chain, err)
		err = stderrors.Unwrap(err)
	}
	return chain
}

// sectionText describes one link of the chain without repeating its cause.
func sectionText(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return fmt.Sprintf("%s: %s", appErr.Code, appErr.Message)
	}
	return err.Error()
}

func typeName(err error) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
}

func boxLine(text string, inner int) string {
	return "| " + text + strings.Repeat(" ", inner-len(text)) + " |"
}

func center(text string, inner int) string {
	if len(text) >= inner {
		return text[:inner]
	}
	left := (inner - len(text)) / 2
	return strings.Repeat(" ", left) + text
}

func causeBar(width int) string {
	label := " " + causeBanner + " "
	if len(label)+2 >= width {
		return "|" + strings.Repeat("*", width-2) + "|"
	}
	fill := width - 2 - len(label)
	left := fill / 2
	right := fill - left
	return "|" + strings.Repeat("-*", left/2+1)[:left] + label + strings.Repeat("*-", right/2+1)[:right] + "|"
}

// wrapText breaks text into lines of at most width bytes, splitting on spaces
// and hard-breaking words that are longer than a line.
func wrapText(text string, width int) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		if para == "" {
			lines = append(lines, "")
			continue
		}
		line := ""
		for _, word := range strings.Fields(para) {
			for len(word) > width {
				if line != "" {
					lines = append(lines, line)
					line = ""
				}
				lines = append(lines, word[:width])
				word = word[width:]
			}
			switch {
			case line == "":
				line = word
			case len(line)+1+len(word) <= width:
				line += " " + word
			default:
				lines = append(lines, line)
				line = word
			}
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
