/*
modelinfo loads OBJ models from an assets directory and prints what the
loader produced: meshes, bounds, materials and the draws a model records.
*/
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spaghettifunk/anima-models/engine/assets"
	"github.com/spaghettifunk/anima-models/engine/assets/loaders"
	"github.com/spaghettifunk/anima-models/engine/core"
	"github.com/spaghettifunk/anima-models/engine/renderer"
	"github.com/spaghettifunk/anima-models/engine/renderer/headless"
	"github.com/spaghettifunk/anima-models/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-models/engine/renderer/vulkan"
	"github.com/spaghettifunk/anima-models/engine/systems"
)

type options struct {
	configPath string
	assetsDir  string
	backend    string
	list       bool
	models     []string
}

func parseOptions(args []string) (*options, error) {
	fs := flag.NewFlagSet("modelinfo", flag.ContinueOnError)
	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "TOML configuration file")
	fs.StringVar(&opts.assetsDir, "assets", "", "assets directory, overrides the configuration")
	fs.StringVar(&opts.backend, "backend", "headless", "renderer backend: headless or vulkan")
	fs.BoolVar(&opts.list, "list", false, "list the indexed models and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	switch opts.backend {
	case "headless", "vulkan":
	default:
		return nil, fmt.Errorf("unknown backend: %s", opts.backend)
	}
	opts.models = fs.Args()
	if !opts.list && len(opts.models) == 0 {
		return nil, fmt.Errorf("no model given")
	}
	return opts, nil
}

func loadConfig(opts *options) (*core.Config, error) {
	cfg := core.DefaultConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = core.LoadConfig(opts.configPath); err != nil {
			return nil, err
		}
	}
	if opts.assetsDir != "" {
		cfg.Assets.Directory = opts.assetsDir
	}
	// a one-shot tool has nothing to watch
	cfg.Assets.Watch = false
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, cfg.Apply()
}

// backend bundles what the model system needs from a renderer and how to
// tear it down.
type backend struct {
	params   *loaders.ModelLoadParams
	submit   systems.SubmitFunc
	shutdown func()
}

func newBackend(name string, textures core.TextureConfig) (*backend, error) {
	if name == "vulkan" {
		context, err := vulkan.NewOffscreenContext("modelinfo")
		if err != nil {
			return nil, err
		}
		vb, err := vulkan.NewBackend(context, textures)
		if err != nil {
			context.Destroy()
			return nil, err
		}
		return &backend{
			params:   &loaders.ModelLoadParams{Device: vb, Textures: vb, Layout: vb.MaterialLayout()},
			submit:   vb.SubmitUploads,
			shutdown: func() { vb.Shutdown(); context.Destroy() },
		}, nil
	}
	device := headless.NewDevice(textures)
	return &backend{
		params:   &loaders.ModelLoadParams{Device: device, Textures: device, Layout: headless.NewMaterialLayout()},
		submit:   device.SubmitUploads,
		shutdown: func() {},
	}, nil
}

func printModel(w io.Writer, name string, model *metadata.Model) {
	fmt.Fprintf(w, "model %s (%s) id=%s\n", name, model.Name, model.ID)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  mesh\tvertices\tindices\tmaterial\tcenter\textents")
	for _, mesh := range model.Meshes {
		fmt.Fprintf(tw, "  %s\t%d\t%d\t%s\t(%.3g %.3g %.3g)\t(%.3g %.3g %.3g)-(%.3g %.3g %.3g)\n",
			mesh.Name, mesh.VertexCount, mesh.ElementCount, model.MaterialFor(mesh).Name,
			mesh.Center.X, mesh.Center.Y, mesh.Center.Z,
			mesh.Extents.Min.X, mesh.Extents.Min.Y, mesh.Extents.Min.Z,
			mesh.Extents.Max.X, mesh.Extents.Max.Y, mesh.Extents.Max.Z)
	}
	tw.Flush()

	for _, material := range model.Materials {
		fmt.Fprintf(w, "  material %s: diffuse %s (%dx%d), normal %s (%dx%d)\n",
			material.Name,
			material.DiffuseTexture.Name, material.DiffuseTexture.Width, material.DiffuseTexture.Height,
			material.NormalTexture.Name, material.NormalTexture.Width, material.NormalTexture.Height)
	}

	pass := &headless.RenderPass{}
	renderer.NewModelDrawer(pass).DrawModel(model, nil)
	fmt.Fprintf(w, "  %d draw calls, %d indices\n", len(pass.Draws()), model.ElementCount())
}

func run(args []string, stdout io.Writer) error {
	opts, err := parseOptions(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	am := assets.NewAssetManager(cfg.Assets)
	if err := am.Initialize(); err != nil {
		return err
	}
	defer am.Shutdown()

	if opts.list {
		for _, asset := range am.Assets(metadata.ResourceTypeModel) {
			fmt.Fprintln(stdout, asset.Name)
		}
		return nil
	}

	b, err := newBackend(opts.backend, cfg.Textures)
	if err != nil {
		return err
	}
	defer b.shutdown()

	models, err := systems.NewModelSystem(&systems.ModelSystemConfig{
		AutoRelease: cfg.Models.AutoRelease,
		Params:      b.params,
		Submit:      b.submit,
	}, am)
	if err != nil {
		return err
	}
	defer models.Shutdown()

	for _, name := range opts.models {
		model, err := models.Acquire(name)
		if err != nil {
			return fmt.Errorf("model '%s': %w", name, err)
		}
		printModel(stdout, name, model)
		if err := models.Release(name); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	go func() {
		<-sigCh
		core.LogWarn("Interrupted.")
		os.Exit(130)
	}()

	if err := run(os.Args[1:], os.Stdout); err != nil {
		core.LogError(err.Error())
		os.Exit(1)
	}
}
