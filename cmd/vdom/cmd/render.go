package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-drift/vdom/cmd/vdom/internal/config"
	"github.com/go-drift/vdom/pkg/core"
	"github.com/go-drift/vdom/pkg/dom/htmldom"
	"github.com/go-drift/vdom/pkg/markup"
)

func newRenderCommand(o *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a markup document to HTML",
		Long: `Render decodes a YAML markup document, builds it, and prints the result.

By default the node markup is printed as produced by the engine's
serializer. With --document the tree is mounted into an HTML document,
which is printed in full with its title.

Examples:
  vdom render page.yaml
  vdom render page.yaml --document --title Home -o index.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.render(cmd, args[0], out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default is stdout)")
	cmd.Flags().Bool("document", false, "write a full HTML document")
	_ = o.v.BindPFlag(config.KeyDocument, cmd.Flags().Lookup("document"))
	return cmd
}

func (o *options) render(cmd *cobra.Command, path, out string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	n, err := markup.Decode(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	var buf bytes.Buffer
	if o.cfg.Document {
		doc := htmldom.New()
		doc.SetTitle(o.cfg.Title)
		owner := o.newOwner(doc)
		if _, err := owner.Mount(n, doc.Body()); err != nil {
			return err
		}
		if err := doc.Render(&buf); err != nil {
			return fmt.Errorf("failed to render document: %w", err)
		}
	} else {
		built, err := o.newOwner(nil).Build(n, false)
		if err != nil {
			return err
		}
		buf.WriteString(built.String())
	}
	buf.WriteByte('\n')

	if out == "" {
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	o.logger.Info("rendered", "file", path, "out", out, "bytes", buf.Len())
	return nil
}

func (o *options) newOwner(doc *htmldom.Document) *core.BuildOwner {
	var owner *core.BuildOwner
	if doc == nil {
		owner = core.NewBuildOwner(nil, nil)
	} else {
		owner = core.NewBuildOwner(doc, nil)
	}
	owner.MaxDepth = o.cfg.MaxDepth
	owner.Logger = o.logger
	return owner
}
