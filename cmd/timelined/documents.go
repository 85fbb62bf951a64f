package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/heimdex/heimdex-timeline/internal/export"
	"github.com/heimdex/heimdex-timeline/internal/project"
)

var importCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Create a project from a YAML timeline document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		doc, err := project.DecodeDocument(f)
		if err != nil {
			return err
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		p, err := st.service().Import(cmd.Context(), doc)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %q as %s\n", p.Name, p.ID)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <project-id>",
	Short: "Write a project as a YAML timeline document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		doc, err := st.service().Export(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("output")
		return writeOutput(cmd.OutOrStdout(), out, doc.Encode)
	},
}

var edlCmd = &cobra.Command{
	Use:   "edl <project-id>",
	Short: "Export a video track as a CMX3600 EDL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		trackID, _ := cmd.Flags().GetString("track")
		outDir, _ := cmd.Flags().GetString("out")
		fps, _ := cmd.Flags().GetFloat64("fps")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		if fps <= 0 {
			fps = st.cfg.EDLFrameRate()
		}

		svc := st.service()
		snap, err := svc.Snapshot(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer svc.Close(args[0])

		res, err := export.Build(snap.Project.Name, snap.Tracks, trackID, fps)
		if err != nil {
			return err
		}
		for _, id := range res.Skipped {
			st.logger.Warn("item skipped in EDL", "item_id", id)
		}

		if outDir == "" {
			_, err := io.WriteString(cmd.OutOrStdout(), res.EDL)
			return err
		}
		path, err := export.WriteFile(outDir, snap.Project.Name, res.EDL)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d events to %s\n", res.Events, path)
		return nil
	},
}

// writeOutput sends encode's output to path, or to stdout when path is empty.
func writeOutput(stdout io.Writer, path string, encode func(io.Writer) error) error {
	if path == "" {
		return encode(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	edlCmd.Flags().String("track", "", "video track ID (default first video track)")
	edlCmd.Flags().String("out", "", "output directory (default stdout)")
	edlCmd.Flags().Float64("fps", 0, "frame rate (default from config)")
	rootCmd.AddCommand(importCmd, exportCmd, edlCmd)
}
