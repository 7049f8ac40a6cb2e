package main

import (
	"fmt"
	"time"

	"kilocam/cmd/kilocam/cli"
	"kilocam/internal/browser"
	"kilocam/internal/errors"
	"kilocam/internal/format"

	"github.com/spf13/cobra"
)

func (a *app) filesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Browse, download and delete files on the device",
	}
	cmd.AddCommand(a.filesListCmd(), a.filesRemoveCmd(), a.filesDownloadCmd())
	return cmd
}

func (a *app) filesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ls [path]",
		Aliases: []string{"list"},
		Short:   "List a directory, folders first",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := browser.Root
			if len(args) > 0 {
				path = browser.Clean(args[0])
			}

			br := browser.New(a.client)
			if err := br.Load(cmd.Context(), path); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			cli.PrintHeader(out, "Files: "+br.Path())
			entries := br.Entries()
			if len(entries) == 0 {
				fmt.Fprintln(out, cli.Muted("(empty)"))
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%-40s %10s\n", format.EntryName(e), format.EntrySize(e))
			}
			fmt.Fprintln(out, cli.Muted(format.Summary(entries)))
			return nil
		},
	}
}

func (a *app) filesRemoveCmd() *cobra.Command {
	var dir bool

	cmd := &cobra.Command{
		Use:     "rm <path>",
		Aliases: []string{"delete"},
		Short:   "Delete a file, or a directory and everything in it with --dir",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := browser.Clean(args[0])
			if browser.IsRoot(path) {
				return errors.NewBrowseError("refusing to delete", path, errors.InvalidPath, nil)
			}

			br := browser.New(a.client)
			// list the parent first so the refresh after the delete shows it
			if err := br.Load(cmd.Context(), browser.Parent(path)); err != nil {
				return err
			}

			t := browser.Target{Path: path, IsDir: dir}
			err := br.Delete(cmd.Context(), t, a.confirmer)
			out := cmd.OutOrStdout()
			switch {
			case errors.IsDeclined(err):
				cli.PrintWarning(out, "Cancelled")
				return nil
			case errors.IsPartialDelete(err):
				cli.PrintWarning(out, "Some files could not be deleted, run 'kilocam files ls "+path+"' to see what remains")
				return err
			case err != nil:
				return err
			}
			cli.PrintSuccess(out, "Deleted "+path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dir, "dir", false, "delete a directory recursively")
	return cmd
}

func (a *app) filesDownloadCmd() *cobra.Command {
	var (
		match  string
		output string
		pacing time.Duration
	)

	cmd := &cobra.Command{
		Use:   "download [dir]",
		Short: "Download every file in a directory",
		Long: `Download every file in a directory (not its sub-directories). Downloads
are started one pacing interval apart so the device is not flooded.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := browser.Root
			if len(args) > 0 {
				dir = browser.Clean(args[0])
			}
			if !cmd.Flags().Changed("match") {
				match = a.cfg.Downloads.Match
			}
			if output == "" {
				output = a.cfg.Downloads.Dir
			}
			if pacing <= 0 {
				pacing = a.cfg.Pacing()
			}

			d := browser.NewDownloader(a.client, output, pacing)
			if err := d.SetMatch(match); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			q, err := d.Plan(cmd.Context(), dir)
			if errors.IsNothingToDownload(err) {
				cli.PrintWarning(out, "No files to download in "+dir)
				return nil
			}
			if err != nil {
				return err
			}
			if !a.confirmer.Confirm(browser.Prompt(dir)) {
				cli.PrintWarning(out, "Cancelled")
				return nil
			}

			d.OnResult = func(r browser.Result) {
				if r.Err != nil {
					cli.PrintError(out, fmt.Sprintf("%s: %v", r.Path, r.Err))
					return
				}
				fmt.Fprintf(out, "%s %s\n", r.Local, cli.Muted(format.Size(r.Bytes)))
			}
			results, err := d.Run(cmd.Context(), q)

			var total int64
			for _, r := range results {
				total += r.Bytes
			}
			if err != nil {
				return err
			}
			if len(results) < q.Len() {
				cli.PrintWarning(out, fmt.Sprintf("Stopped after %d of %d files", len(results), q.Len()))
				return nil
			}
			cli.PrintSuccess(out, fmt.Sprintf("Downloaded %d files (%s) to %s", len(results), format.Size(total), output))
			return nil
		},
	}

	cmd.Flags().StringVar(&match, "match", "", "only download file names matching this glob, e.g. '*.{jpg,jpeg}'")
	cmd.Flags().StringVarP(&output, "output", "o", "", "download directory (default from config)")
	cmd.Flags().DurationVar(&pacing, "pacing", 0, "delay between downloads (default from config)")
	return cmd
}
