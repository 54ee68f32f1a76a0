package main

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"xdao.co/datadao/keys"
	"xdao.co/datadao/tx"
)

const defaultGasBudget = 10_000_000

type TxOptions struct {
	Signer    string
	Role      string
	Sender    string
	GasBudget uint64
	Nonce     uint64

	PackageID   string
	DAOObjectID string
	Treasury    string
}

func (o *TxOptions) add(fs *pflag.FlagSet) {
	fs.StringVar(&o.Signer, "signer", "", "key store account that signs")
	fs.StringVar(&o.Role, "role", "", "role key of the signer account")
	fs.StringVar(&o.Sender, "sender", "", "sender address (default: signer address)")
	fs.Uint64Var(&o.GasBudget, "gas-budget", defaultGasBudget, "gas budget in smallest units")
	fs.Uint64Var(&o.Nonce, "nonce", 0, "transaction nonce")
	fs.StringVar(&o.PackageID, "package", "", "DAO package id (overrides config)")
	fs.StringVar(&o.DAOObjectID, "dao", "", "DAO object id (overrides config)")
	fs.StringVar(&o.Treasury, "treasury", "", "treasury object id (overrides config)")
}

func (o *TxOptions) builder(root *RootOptions) tx.DAO {
	b := root.Config.Builder()
	if o.PackageID != "" {
		b.PackageID = o.PackageID
	}
	if o.DAOObjectID != "" {
		b.DAOObjectID = o.DAOObjectID
	}
	if o.Treasury != "" {
		b.TreasuryObjectID = o.Treasury
	}
	return b
}

func (o *TxOptions) sign(cmd *cobra.Command, root *RootOptions, call tx.MoveCall) error {
	if o.Signer == "" {
		return errors.New("--signer is required")
	}
	ks, err := keys.OpenKeyStore(root.KeysDir)
	if err != nil {
		return err
	}
	signer, err := ks.Signer(o.Signer, o.Role)
	if err != nil {
		return err
	}
	env, err := tx.Sign(call, signer, o.Sender, o.GasBudget, o.Nonce)
	if err != nil {
		return err
	}
	root.Log.Debug().Str("target", call.Target()).Str("digest", env.Digest).Msg("transaction signed")
	return printJSON(cmd.OutOrStdout(), env)
}

func newTxCmd(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Build and sign DAO transactions",
	}

	createOpts, rf := &TxOptions{}, &recordFlags{}
	var votingDays uint64
	create := &cobra.Command{
		Use:   "create-proposal",
		Short: "Sign a create_proposal call",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := rf.record()
			if err != nil {
				return err
			}
			call, err := createOpts.builder(root).CreateProposal(r, votingDays)
			if err != nil {
				return err
			}
			return createOpts.sign(cmd, root, call)
		},
	}
	createOpts.add(create.Flags())
	rf.add(create.Flags())
	create.Flags().Uint64Var(&votingDays, "voting-days", 7, "voting period in days")

	voteOpts := &TxOptions{}
	var proposalID string
	var reject bool
	vote := &cobra.Command{
		Use:   "vote",
		Short: "Sign a vote on a proposal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			call, err := voteOpts.builder(root).Vote(proposalID, !reject)
			if err != nil {
				return err
			}
			return voteOpts.sign(cmd, root, call)
		},
	}
	voteOpts.add(vote.Flags())
	vote.Flags().StringVar(&proposalID, "proposal", "", "proposal object id")
	vote.Flags().BoolVar(&reject, "reject", false, "vote against (default: approve)")
	_ = vote.MarkFlagRequired("proposal")

	execOpts := &TxOptions{}
	var execID string
	execute := &cobra.Command{
		Use:   "execute",
		Short: "Sign an execute_proposal call",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			call, err := execOpts.builder(root).ExecuteProposal(execID)
			if err != nil {
				return err
			}
			return execOpts.sign(cmd, root, call)
		},
	}
	execOpts.add(execute.Flags())
	execute.Flags().StringVar(&execID, "proposal", "", "proposal object id")
	_ = execute.MarkFlagRequired("proposal")

	cmd.AddCommand(create, vote, execute)
	return cmd
}
