// Package format turns arbitrary webhook payloads into message bodies using
// simple shape-based heuristics. It is the fallback used when a connection
// has no transformation function.
package format

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
)

// Message is a plain/HTML message body pair. HTML is empty when no explicit
// HTML was produced; the caller decides how to render the plain body.
type Message struct {
	Plain string
	HTML  string
}

// Format maps an arbitrary decoded JSON payload to a message body.
//
// Strings are wrapped verbatim. Objects with a string "text" field use that
// text as the body. Everything else is pretty-printed into a fenced JSON
// code block. A string "html" field overrides any computed HTML, and a
// string "username" field prefixes both bodies with an emphasized name.
func Format(payload any) Message {
	if s, ok := payload.(string); ok {
		return Message{Plain: "Received webhook data: " + s}
	}

	obj, _ := payload.(map[string]any)

	var msg Message
	if text, ok := obj["text"].(string); ok {
		msg.Plain = text
	} else {
		pretty := prettyJSON(payload)
		msg.Plain = "Received webhook data:\n\n```json\n\n" + pretty + "\n\n```"
		msg.HTML = "<p>Received webhook data:</p><p><pre><code class=\"language-json\">" + pretty + "</code></pre></p>"
	}

	if html, ok := obj["html"].(string); ok {
		msg.HTML = html
	}

	if username, ok := obj["username"].(string); ok {
		msg.Plain = "**" + username + "**: " + msg.Plain
		if msg.HTML != "" {
			msg.HTML = "<strong>" + username + "</strong>: " + msg.HTML
		}
	}

	return msg
}

// Render converts a plain markdown body into HTML. Used for the formatted
// body when neither the payload nor a transformation supplied explicit HTML.
func Render(plain string) string {
	return strings.TrimSpace(string(markdown.ToHTML([]byte(plain), nil, nil)))
}

func prettyJSON(payload any) string {
	pretty, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		// Payloads arrive from decoded JSON, so this only triggers on
		// hand-constructed values. Fall back to Go formatting.
		return fmt.Sprintf("%v", payload)
	}
	return string(pretty)
}
