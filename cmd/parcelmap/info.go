package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/paulmach/orb/maptile"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"parcelmap/internal/httpapi"
	"parcelmap/internal/mapview"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

func newLayersCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "layers",
		Short: "List the configured layers in draw order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctl, _, err := o.controller(cmd.Context(), zerolog.Nop())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), layersTable(ctl))
			return nil
		},
	}
}

// layersTable renders one row per layer. Tile layers show the URL of the
// tile under the home view.
func layersTable(ctl *mapview.Controller) string {
	opts := ctl.Options()
	tile := maptile.At(opts.HomeCenter, maptile.Zoom(uint32(opts.HomeZoom)))

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "KIND", "GROUP", "VISIBLE", "SOURCE").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, l := range ctl.Layers() {
		src := l.Source()
		if u, ok := l.TileURL(tile); ok {
			src = u
		}
		t.Row(l.ID, l.Title, string(l.Kind), l.Group, strconv.FormatBool(l.Visible), src)
	}
	return t.Render()
}

func newConfigCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective config as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.config()
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}
}

func newOpenAPICmd(o *options) *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Print the HTTP API description",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.config()
			if err != nil {
				return err
			}
			doc := httpapi.New(zerolog.Nop(), cfg.Build(nil), nil).OpenAPI()
			var b []byte
			if asYAML {
				b, err = yaml.Marshal(doc)
			} else {
				b, err = json.MarshalIndent(doc, "", "  ")
			}
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(b, '\n'))
			return err
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "output YAML instead of JSON")
	return cmd
}
