package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"xdao.co/datadao/proposal"
)

// recordFlags collects the fields of any proposal kind from flags.
type recordFlags struct {
	Kind        string
	Name        string
	Description string
	Reward      string
	Submission  string
	Price       string
}

func (f *recordFlags) add(fs *pflag.FlagSet) {
	fs.StringVar(&f.Kind, "kind", "", "category|data-approval|price")
	fs.StringVar(&f.Name, "name", "", "category name")
	fs.StringVar(&f.Description, "description", "", "category description")
	fs.StringVar(&f.Reward, "reward", "0", "category reward in tokens, e.g. 1.5")
	fs.StringVar(&f.Submission, "submission", "", "0x-prefixed submission id")
	fs.StringVar(&f.Price, "price", "0", "dataset price in tokens")
}

func (f *recordFlags) record() (proposal.Record, error) {
	kind, err := proposal.ParseKind(f.Kind)
	if err != nil {
		return nil, err
	}
	switch kind {
	case proposal.KindCategory:
		reward, err := proposal.ParseAmount(f.Reward)
		if err != nil {
			return nil, fmt.Errorf("--reward: %w", err)
		}
		return proposal.CategoryProposal{Name: f.Name, Description: f.Description, RewardAmount: reward}, nil
	case proposal.KindDataApproval:
		id, err := proposal.ParseSubmissionID(f.Submission)
		if err != nil {
			return nil, fmt.Errorf("--submission: %w", err)
		}
		return proposal.DataApprovalProposal{SubmissionID: id}, nil
	default:
		id, err := proposal.ParseSubmissionID(f.Submission)
		if err != nil {
			return nil, fmt.Errorf("--submission: %w", err)
		}
		price, err := proposal.ParseAmount(f.Price)
		if err != nil {
			return nil, fmt.Errorf("--price: %w", err)
		}
		return proposal.PriceProposal{SubmissionID: id, Price: price}, nil
	}
}

func newProposalCmd(_ *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proposal",
		Short: "Encode and decode proposal payloads",
	}

	rf := &recordFlags{}
	encode := &cobra.Command{
		Use:   "encode",
		Short: "Print the hex payload of a proposal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := rf.record()
			if err != nil {
				return err
			}
			b, err := proposal.Encode(r)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "0x"+hex.EncodeToString(b))
			return err
		},
	}
	rf.add(encode.Flags())

	var kindName string
	decode := &cobra.Command{
		Use:   "decode <hex>",
		Short: "Render a hex payload of the given kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := proposal.ParseKind(kindName)
			if err != nil {
				return err
			}
			raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(args[0]), "0x"))
			if err != nil {
				return fmt.Errorf("payload: %w", err)
			}
			v := proposal.Describe(kind, raw)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, v.Title)
			for _, f := range v.Fields {
				fmt.Fprintf(out, "  %s: %s\n", f.Label, f.Value)
			}
			if v.Err != nil {
				fmt.Fprintf(out, "  error: %v\n", v.Err)
			}
			return nil
		},
	}
	decode.Flags().StringVar(&kindName, "kind", "", "category|data-approval|price")

	cmd.AddCommand(encode, decode)
	return cmd
}
