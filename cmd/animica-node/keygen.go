package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/animicaorg/animica-node/address"
	"github.com/animicaorg/animica-node/codec"
	"github.com/animicaorg/animica-node/pqsig"
)

// algIDFor assigns each registered scheme a stable address alg_id byte; the
// spec treats alg_id as an opaque per-scheme tag (CANONICAL §2 "Address"),
// so this mapping only needs to be consistent within this node's keygen/
// address-derivation path, not externally standardized.
func algIDFor(scheme pqsig.Scheme) byte {
	switch scheme {
	case pqsig.SchemeDilithium3:
		return 0x01
	case pqsig.SchemeSPHINCSShake128s:
		return 0x02
	default:
		return 0x00
	}
}

func newKeygenCmd() *cobra.Command {
	var scheme string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a development keypair and print its derived address",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := pqsig.Scheme(scheme)
			if _, ok := pqsig.ParamsFor(s); !ok {
				return fmt.Errorf("keygen: unknown scheme %q", scheme)
			}

			seed := make([]byte, 32)
			if _, err := rand.Read(seed); err != nil {
				return fmt.Errorf("keygen: generate seed: %w", err)
			}

			provider := pqsig.DevStdProvider{}
			pubkey, err := provider.DerivePubkey(s, seed)
			if err != nil {
				return fmt.Errorf("keygen: derive pubkey: %w", err)
			}

			addr := address.New(algIDFor(s), codec.SHA3_256(pubkey))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "scheme:  %s\n", s)
			fmt.Fprintf(out, "seed:    %s\n", hex.EncodeToString(seed))
			fmt.Fprintf(out, "pubkey:  %s\n", hex.EncodeToString(pubkey))
			fmt.Fprintf(out, "address: %s\n", addr.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&scheme, "scheme", string(pqsig.SchemeDilithium3), "signature scheme: dilithium3|sphincs_shake_128s")
	return cmd
}
