package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nostressdev/webrtcredux/sdp"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type record struct {
	Kind  string      `json:"kind" yaml:"kind"`
	Value interface{} `json:"value,omitempty" yaml:"value,omitempty"`
	Media *media      `json:"media,omitempty" yaml:"media,omitempty"`
}

type media struct {
	Type     sdp.MediaType `json:"type" yaml:"type"`
	Ports    []uint16      `json:"ports" yaml:"ports,flow"`
	Protocol sdp.Protocol  `json:"protocol" yaml:"protocol"`
	Format   string        `json:"format" yaml:"format"`
	Props    []record      `json:"props,omitempty" yaml:"props,omitempty"`
}

// records flattens doc into tagged records so the line type survives
// rendering as JSON or YAML.
func records(doc *sdp.Document) []record {
	out := make([]record, 0, len(doc.Props))
	for _, p := range doc.Props {
		r := record{Kind: string(p.Kind())}
		if m, ok := p.(*sdp.Media); ok {
			r.Media = &media{Type: m.Type, Ports: m.Ports, Protocol: m.Protocol, Format: m.Format}
			for _, mp := range m.Props {
				r.Media.Props = append(r.Media.Props, record{Kind: string(mp.Kind()), Value: mp})
			}
		} else {
			r.Value = p
		}
		out = append(out, r)
	}
	return out
}

func (a *app) newParseCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Parse an SDP document and print it",
		Long: `Parse an SDP document and print it as sdp (rendered with the configured line
ending), json, yaml or a one line per media section summary.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := a.readFile(args)
			if err != nil {
				return err
			}
			doc, err := sdp.NewDecoder(strings.NewReader(text), sdp.WithLoggerFactory(a.loggers)).Decode()
			if err != nil {
				return err
			}
			return a.printDocument(doc, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "sdp", "output format (sdp, json, yaml, summary)")
	return cmd
}

func (a *app) printDocument(doc *sdp.Document, output string) error {
	switch output {
	case "sdp":
		return sdp.NewEncoder(a.out, a.cfg.EOL()).Encode(doc)
	case "json":
		b, err := json.MarshalIndent(records(doc), "", "  ")
		if err != nil {
			return errors.Wrap(err, "rendering json")
		}
		return a.println(string(b))
	case "yaml":
		b, err := yaml.Marshal(records(doc))
		if err != nil {
			return errors.Wrap(err, "rendering yaml")
		}
		return a.println(string(b))
	case "summary":
		return a.println(summary(doc))
	default:
		return errors.Errorf("unknown output format %q", output)
	}
}

func summary(doc *sdp.Document) string {
	var b strings.Builder
	media := doc.Media()
	fmt.Fprintf(&b, "records: %d\n", len(doc.Props))
	if s, ok := sessionName(doc); ok {
		fmt.Fprintf(&b, "session: %s\n", s)
	}
	fmt.Fprintf(&b, "media: %d\n", len(media))

	for i, m := range media {
		fmt.Fprintf(&b, "  %d: %s %d %s", i, m.Type, m.Port(), m.Protocol)
		if mid, ok := m.Attribute("mid"); ok && mid.Value != nil {
			fmt.Fprintf(&b, " mid=%s", *mid.Value)
		}
		codecs, err := m.Codecs()
		if err != nil {
			fmt.Fprintf(&b, " codecs: %v\n", err)
			continue
		}
		names := make([]string, 0, len(codecs))
		for _, c := range codecs {
			names = append(names, c.String())
		}
		if len(names) > 0 {
			fmt.Fprintf(&b, " codecs: %s", strings.Join(names, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func sessionName(doc *sdp.Document) (sdp.SessionName, bool) {
	for _, p := range doc.Props {
		if s, ok := p.(sdp.SessionName); ok {
			return s, true
		}
	}
	return "", false
}
