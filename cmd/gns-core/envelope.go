package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cayerbe/gns-core/envelope"
	"github.com/cayerbe/gns-core/gnserr"
	"github.com/cayerbe/gns-core/identity"
)

var (
	sealSeedHex             string
	sealRecipientPublicHex  string
	sealRecipientAgreeHex   string
	sealPayloadType         string
	sealPayload             string
	sealThreadID            string
	sealReplyToID           string
	sealFromHandle          string

	openSeedHex    string
	openEnvelopeIn string
)

var envelopeCmd = &cobra.Command{
	Use:   "envelope",
	Short: "Seal and open envelopes",
}

var envelopeSealCmd = &cobra.Command{
	Use:   "seal",
	Short: "Seal a plaintext payload into an envelope addressed to a recipient",
	RunE:  runEnvelopeSeal,
}

var envelopeOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "Open an envelope (reads JSON from --in, or stdin if omitted)",
	RunE:  runEnvelopeOpen,
}

func init() {
	rootCmd.AddCommand(envelopeCmd)
	envelopeCmd.AddCommand(envelopeSealCmd)
	envelopeCmd.AddCommand(envelopeOpenCmd)

	envelopeSealCmd.Flags().StringVar(&sealSeedHex, "seed", "", "sender's 64-hex seed (required)")
	envelopeSealCmd.Flags().StringVar(&sealRecipientPublicHex, "to", "", "recipient's 64-hex signing public key (required)")
	envelopeSealCmd.Flags().StringVar(&sealRecipientAgreeHex, "to-agreement", "", "recipient's 64-hex agreement public key (required)")
	envelopeSealCmd.Flags().StringVar(&sealPayloadType, "payload-type", "text/plain", "payload type")
	envelopeSealCmd.Flags().StringVar(&sealPayload, "payload", "", "plaintext payload (required)")
	envelopeSealCmd.Flags().StringVar(&sealThreadID, "thread-id", "", "unsigned thread id hint")
	envelopeSealCmd.Flags().StringVar(&sealReplyToID, "reply-to-id", "", "unsigned reply-to id hint")
	envelopeSealCmd.Flags().StringVar(&sealFromHandle, "from-handle", "", "unsigned sender handle hint")
	for _, name := range []string{"seed", "to", "to-agreement", "payload"} {
		envelopeSealCmd.MarkFlagRequired(name)
	}

	envelopeOpenCmd.Flags().StringVar(&openSeedHex, "seed", "", "recipient's 64-hex seed (required)")
	envelopeOpenCmd.Flags().StringVar(&openEnvelopeIn, "in", "", "path to envelope JSON (default: stdin)")
	envelopeOpenCmd.MarkFlagRequired("seed")
}

func runEnvelopeSeal(cmd *cobra.Command, args []string) error {
	sender, err := identity.FromHex(sealSeedHex)
	if err != nil {
		return fmt.Errorf("load sender identity: %w", err)
	}
	defer sender.Close()

	agreementPub, err := decodeAgreementKey(sealRecipientAgreeHex)
	if err != nil {
		return fmt.Errorf("decode recipient agreement key: %w", err)
	}

	env, err := envelope.Create(sender, sealRecipientPublicHex, agreementPub, sealPayloadType, []byte(sealPayload), envelope.Hints{
		FromHandle: sealFromHandle,
		ThreadID:   sealThreadID,
		ReplyToID:  sealReplyToID,
	})
	if err != nil {
		return fmt.Errorf("seal envelope: %w", err)
	}

	return printJSON(env)
}

func runEnvelopeOpen(cmd *cobra.Command, args []string) error {
	recipient, err := identity.FromHex(openSeedHex)
	if err != nil {
		return fmt.Errorf("load recipient identity: %w", err)
	}
	defer recipient.Close()

	raw, err := readInput(openEnvelopeIn)
	if err != nil {
		return fmt.Errorf("read envelope input: %w", err)
	}

	var env envelope.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("parse envelope JSON: %w", err)
	}

	opened, err := envelope.Open(recipient, &env)
	if err != nil {
		return fmt.Errorf("open envelope: %w", err)
	}

	return printJSON(struct {
		FromPublicKey  string `json:"from_public_key"`
		FromHandle     string `json:"from_handle,omitempty"`
		PayloadType    string `json:"payload_type"`
		Payload        string `json:"payload"`
		SignatureValid bool   `json:"signature_valid"`
		EnvelopeID     string `json:"envelope_id"`
		ThreadID       string `json:"thread_id,omitempty"`
	}{
		FromPublicKey:  opened.FromPublicKey,
		FromHandle:     opened.FromHandle,
		PayloadType:    opened.PayloadType,
		Payload:        string(opened.Payload),
		SignatureValid: opened.SignatureValid,
		EnvelopeID:     opened.EnvelopeID,
		ThreadID:       opened.ThreadID,
	})
}

func decodeAgreementKey(hexStr string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return out, gnserr.Wrap(gnserr.KindInvalidHex, "decode agreement key hex", err)
	}
	if len(raw) != 32 {
		return out, gnserr.InvalidKeyLength(32, len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
