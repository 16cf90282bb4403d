package locate

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pixil98/go-locator/internal/display"
	"github.com/pixil98/go-locator/internal/protocol"
)

type visibility int

const (
	visibilityDenied visibility = iota
	visibilityLimited
	visibilityFull
	visibilitySelf
)

const divider = "--------------------------------"

const answerTemplate = `{{ .Divider }}
Player: {{ .Name }}{{ if .Self }} (that's you!){{ end }}
{{- if .Full }}
Server: {{ .Server }}
World: {{ .World | default "UNKNOWN" }}
{{- end }}
Location: ({{ .X }}, {{ .Y }}, {{ .Z }})
Direction: {{ .Direction }}
{{ .Divider }}
{{- if .Zones }}
{{ .Zones }}
{{ .Divider }}
{{- end }}`

var answerTmpl = template.Must(template.New("answer").Funcs(sprig.TxtFuncMap()).Parse(answerTemplate))

// answerView is the data rendered for one answer.
type answerView struct {
	Divider   string
	Name      string
	Self      bool
	Full      bool
	Server    string
	World     string
	X, Y, Z   string
	Direction protocol.Direction
	Zones     string
}

func newAnswerView(resp protocol.Response, name, server string, v visibility) answerView {
	view := answerView{
		Divider:   divider,
		Name:      name,
		Self:      v == visibilitySelf,
		Full:      v == visibilityFull || v == visibilitySelf,
		Server:    server,
		X:         resp.X,
		Y:         resp.Y,
		Z:         resp.Z,
		Direction: resp.Direction(),
	}
	if view.Server == "" {
		view.Server = "UNKNOWN"
	}
	if resp.HasWorld() {
		view.World = resp.World
	}
	if view.Full {
		view.Zones = zonesLine(resp.Zones)
	}
	return view
}

// zonesLine renders the zone part of an answer. It is empty when zones
// were not requested.
func zonesLine(z protocol.ZoneSet) string {
	switch z.State {
	case protocol.ZonesUnknown:
		return "Zones: UNKNOWN"
	case protocol.ZonesGlobal:
		return "Zones: GLOBAL (no specific zone)"
	case protocol.ZonesNamed:
		return display.Wrap("Zones: " + strings.Join(z.Names, ", "))
	default:
		return ""
	}
}

func renderAnswer(view answerView) (string, error) {
	var buf bytes.Buffer
	if err := answerTmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("executing answer template: %w", err)
	}
	return buf.String(), nil
}

func deniedText(name string) string {
	return fmt.Sprintf("You do not have permission to check %s's location.", name)
}
