package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/inodb/gvcfcov/internal/annotation"
)

func newGenesCmd() *cobra.Command {
	var refflat, gene string

	cmd := &cobra.Command{
		Use:   "genes",
		Short: "List gene spans of an annotation table",
		Long: `Group the transcripts of an annotation table by gene and print one line per
gene: name, chromosome, start, end and transcript count. The span is the
union of the gene's transcripts.`,
		Example: `  gvcfcov genes -R refFlat.txt.gz
  gvcfcov genes -R hg38.duckdb --gene KRAS`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if refflat == "" {
				return usagef("--refflat is required")
			}
			transcripts, err := loadAnnotation(cmd.Context(), refflat, gene)
			if err != nil {
				return err
			}
			return writeGenes(cmd.OutOrStdout(), annotation.GroupGenes(transcripts))
		},
	}

	cmd.Flags().StringVarP(&refflat, "refflat", "R", "", "refFlat annotation table or .duckdb store")
	cmd.Flags().StringVar(&gene, "gene", "", "Only print this gene")

	return cmd
}

func writeGenes(w io.Writer, genes []*annotation.Gene) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("#gene\tchrom\tstart\tend\ttranscripts\n"); err != nil {
		return err
	}
	for _, g := range genes {
		if _, err := fmt.Fprintf(bw, "%s\t%s\t%d\t%d\t%d\n", g.Name, g.Chrom, g.Start, g.End, len(g.Transcripts)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
