package goal

import (
	"net/url"
	"strings"
)

// Prefix is shown in front of the goal input on the landing view.
const Prefix = "I want to… "

var prefixes = []string{Prefix, strings.TrimSpace(Prefix), "I want to... ", "I want to..."}

// Placeholders rotate through the empty goal input.
var Placeholders = []string{
	"feel more settled in my apartment in Toronto",
	"get back into creative habits",
	"host the best dinner parties",
}

// Normalize removes a leading prefix if the visitor typed it. The rest of
// the goal is kept as entered.
func Normalize(raw string) string {
	for _, p := range prefixes {
		if strings.HasPrefix(raw, p) {
			return strings.TrimPrefix(raw, p)
		}
	}
	return raw
}

// SceneLocation is where a submitted goal is sent.
func SceneLocation(goal string) string {
	return "/scene?goal=" + url.QueryEscape(goal)
}
