package cli

import (
	"encoding/json"

	"github.com/nostressdev/webrtcredux"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (a *app) newEncodeCommand() *cobra.Command {
	var (
		sdpType  string
		compress bool
	)

	cmd := &cobra.Command{
		Use:   "encode [file|-]",
		Short: "Encode an SDP document as a signalling blob",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := webrtcredux.NewRTCSdpType(sdpType)
			if err != nil {
				return err
			}
			text, err := a.readFile(args)
			if err != nil {
				return err
			}

			desc := &webrtcredux.RTCSessionDescription{Type: t, SDP: text}
			if t != webrtcredux.RTCSdpTypeRollback {
				if _, err := desc.Unmarshal(); err != nil {
					return err
				}
			} else {
				desc.SDP = ""
			}

			blob, err := webrtcredux.Encode(desc, compress)
			if err != nil {
				return err
			}
			return a.println(blob)
		},
	}
	cmd.Flags().StringVarP(&sdpType, "type", "t", "offer", "session description type (offer, pranswer, answer, rollback)")
	cmd.Flags().BoolVarP(&compress, "compress", "z", false, "gzip the description before base64")
	return cmd
}

func (a *app) newDecodeCommand() *cobra.Command {
	var (
		fallback string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "decode [blob|-]",
		Short: "Decode a signalling blob",
		Long: `Decode a signalling blob and print the SDP it carries, or the whole session
description as json. Blobs holding bare SDP text get the type given by --type.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := webrtcredux.NewRTCSdpType(fallback)
			if err != nil {
				return err
			}
			blob, err := a.readArg(args)
			if err != nil {
				return err
			}
			desc, err := webrtcredux.Decode(blob, t)
			if err != nil {
				return err
			}
			a.log.Debugf("decoded %s of %d bytes", desc.Type, len(desc.SDP))
			return a.printDescription(desc, output)
		},
	}
	cmd.Flags().StringVarP(&fallback, "type", "t", "offer", "type of blobs holding bare SDP text")
	cmd.Flags().StringVarP(&output, "output", "o", "sdp", "output format (sdp, json, yaml, summary)")
	return cmd
}

// printDescription prints desc as JSON, or its parsed document in any
// format parse supports.
func (a *app) printDescription(desc *webrtcredux.RTCSessionDescription, output string) error {
	if output == "json" {
		b, err := json.MarshalIndent(desc, "", "  ")
		if err != nil {
			return errors.Wrap(err, "rendering json")
		}
		return a.println(string(b))
	}
	if desc.Type == webrtcredux.RTCSdpTypeRollback {
		return a.println(desc.Type.String())
	}

	doc, err := desc.Unmarshal()
	if err != nil {
		return err
	}
	return a.printDocument(doc, output)
}
