package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mandel/pkg/fractal"
)

// regionsCommand lists the built-in presets.
func (c *CLI) regionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "regions",
		Short: "List the named regions accepted by --preset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), presetTable(fractal.Presets()))
			return nil
		},
	}
}

// presetTable renders presets as a bordered table.
func presetTable(presets []fractal.Preset) string {
	rows := make([][]string, len(presets))
	for i, p := range presets {
		r := p.Region
		rows[i] = []string{
			p.Name,
			formatPoint(r.LowerLeft),
			formatPoint(r.UpperRight),
			strconv.FormatFloat(r.Density, 'g', -1, 64),
			fmt.Sprintf("%d x %d", r.PixelWidth(), r.PixelHeight()),
			strconv.FormatUint(p.MaxIter, 10),
			p.Description,
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	nameStyle := lipgloss.NewStyle().Foreground(colorCyan)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Name", "Lower-left", "Upper-right", "Density", "Size", "Max iter", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1: // header
				return headerStyle.Inherit(cellStyle)
			case col == 0:
				return nameStyle.Inherit(cellStyle)
			case col == 6:
				return cellStyle.Foreground(colorDim)
			}
			return cellStyle
		})

	return t.Render()
}
