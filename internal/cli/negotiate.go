package cli

import (
	"github.com/nostressdev/webrtcredux"
	"github.com/spf13/cobra"
)

type blobFlags struct {
	base64   bool
	compress bool
}

func (f *blobFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.base64, "base64", "b", false, "print a signalling blob instead of SDP text")
	cmd.Flags().BoolVarP(&f.compress, "compress", "z", false, "gzip the blob, implies --base64")
}

func (a *app) printNegotiated(desc *webrtcredux.RTCSessionDescription, f blobFlags) error {
	if !f.base64 && !f.compress {
		_, err := a.out.Write([]byte(desc.SDP))
		return err
	}
	blob, err := webrtcredux.Encode(desc, f.compress)
	if err != nil {
		return err
	}
	return a.println(blob)
}

func (a *app) newOfferCommand() *cobra.Command {
	var f blobFlags

	cmd := &cobra.Command{
		Use:   "offer",
		Short: "Create an offer for the configured tracks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.cfg.Negotiator(a.loggers)
			if err != nil {
				return err
			}
			defer n.Close()

			offer, err := n.CreateOffer()
			if err != nil {
				return err
			}
			return a.printNegotiated(offer, f)
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) newAnswerCommand() *cobra.Command {
	var f blobFlags

	cmd := &cobra.Command{
		Use:   "answer [blob|-]",
		Short: "Answer an offer with the configured tracks",
		Long: `Answer an offer with the configured tracks. The offer is a signalling blob or
bare SDP text, read from standard input when no argument or "-" is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := a.readArg(args)
			if err != nil {
				return err
			}
			offer, err := webrtcredux.Decode(blob, webrtcredux.RTCSdpTypeOffer)
			if err != nil {
				return err
			}

			n, err := a.cfg.Negotiator(a.loggers)
			if err != nil {
				return err
			}
			defer n.Close()

			if err := n.SetRemoteDescription(offer); err != nil {
				return err
			}
			answer, err := n.CreateAnswer(offer)
			if err != nil {
				return err
			}
			if err := n.SetLocalDescription(answer); err != nil {
				return err
			}
			a.log.Infof("answered %s, signaling state %s", offer.Type, n.SignalingState())
			return a.printNegotiated(answer, f)
		},
	}
	f.register(cmd)
	return cmd
}
