// Command-line interface for reading, exporting and serving OME-Zarr layers.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/janelia-flyem/omezarr"
	"github.com/janelia-flyem/omezarr/export"
	"github.com/janelia-flyem/omezarr/layer"
	"github.com/janelia-flyem/omezarr/ngff"
	"github.com/janelia-flyem/omezarr/server"
	"github.com/janelia-flyem/omezarr/storage"
)

var (
	// Display usage if true.
	showHelp = flag.Bool("help", false, "")

	// Run in verbose mode if true.
	runVerbose = flag.Bool("verbose", false, "")

	// Path to TOML server configuration.
	configFile = flag.String("config", "", "")

	// Address for http communication, overriding any configured address.
	httpAddress = flag.String("http", "", "")

	// Size of the metadata cache in megabytes.
	cacheMB = flag.Int("cache", storage.DefaultCacheSize>>20, "")
)

const helpMessage = `
omezarr reads OME-Zarr images as viewer layers

Usage: omezarr [options] <command>

      -config     =string   Path to TOML server configuration.
      -http       =string   Address for HTTP communication.
      -cache      =number   Metadata cache size in MB (0 disables).
      -verbose    (flag)    Run in verbose mode.
  -h, -help       (flag)    Show help message

Commands:

	about
	help
	layers <path>
	export <path> <destination>
	serve
`

var usage = func() {
	fmt.Print(helpMessage)
}

func main() {
	flag.BoolVar(showHelp, "h", false, "Show help message")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() >= 1 && strings.ToLower(flag.Args()[0]) == "help" {
		*showHelp = true
	}
	if *showHelp || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}
	if *runVerbose {
		ngff.Verbose = true
		ngff.SetLogMode(ngff.DebugMode)
	} else {
		ngff.SetLogMode(ngff.WarningMode)
	}
	storage.SetCacheSize(*cacheMB << 20)

	// Capture ctrl+c and other interrupts for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := DoCommand(ctx, os.Stdout, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	ngff.Shutdown()
}

// DoCommand serves as a switchboard for commands.
func DoCommand(ctx context.Context, out io.Writer, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("Blank command!")
	}
	switch args[0] {
	case "about":
		fmt.Fprintf(out, "omezarr %s\nstorage schemes: %s\n", omezarr.Version, strings.Join(storage.Schemes(), ", "))
		return nil
	case "layers":
		if len(args) != 2 {
			return fmt.Errorf("layers command requires <path>")
		}
		return DoLayers(ctx, out, args[1])
	case "export":
		if len(args) != 3 {
			return fmt.Errorf("export command requires <path> <destination>")
		}
		return DoExport(ctx, out, args[1], args[2])
	case "serve":
		return DoServe(ctx)
	}
	return fmt.Errorf("unknown command %q, try 'omezarr help'", args[0])
}

func readLayers(ctx context.Context, path string) ([]layer.Data, error) {
	read, err := omezarr.GetReader(ctx, path)
	if err != nil {
		return nil, err
	}
	if read == nil {
		return nil, fmt.Errorf("%q is not an OME-Zarr hierarchy", path)
	}
	return read()
}

// DoLayers prints a table of the layers read from the path.
func DoLayers(ctx context.Context, out io.Writer, path string) error {
	layers, err := readLayers(ctx, path)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tkind\tname\tshape\tdtype\tscales\tchannel axis\tsize")
	for i, l := range layers {
		channelAxis := "-"
		if axis, ok := l.ChannelAxis(); ok {
			channelAxis = fmt.Sprint(axis)
		}
		name := l.Name()
		if name == "" {
			name = "-"
		}
		a := l.Arrays[0]
		fmt.Fprintf(w, "%d\t%s\t%s\t%v\t%s\t%d\t%s\t%s\n", i, l.Kind, name, a.Shape(), a.DataType(),
			len(l.Arrays), channelAxis, humanize.Bytes(uint64(ngff.NBytes(a))))
	}
	return w.Flush()
}

// DoExport writes the layers read from the path to the destination bucket.
func DoExport(ctx context.Context, out io.Writer, path, dest string) error {
	layers, err := readLayers(ctx, path)
	if err != nil {
		return err
	}
	bucket, err := storage.OpenBucket(ctx, dest)
	if err != nil {
		return fmt.Errorf("can't open export destination %q: %v", dest, err)
	}
	defer bucket.Close()
	manifest, err := export.Export(ctx, bucket, path, layers)
	if err != nil {
		return err
	}
	for _, entry := range manifest.Layers {
		if entry.Properties != "" {
			fmt.Fprintf(out, "wrote %s\n", entry.Properties)
		}
	}
	fmt.Fprintf(out, "wrote %s with %d layers to %s\n", export.ManifestKey, len(manifest.Layers), dest)
	return nil
}

// DoServe serves layers over HTTP until interrupted.
func DoServe(ctx context.Context) error {
	config := server.DefaultConfig()
	if *configFile != "" {
		var err error
		if config, err = server.LoadConfig(*configFile); err != nil {
			return err
		}
	}
	if *httpAddress != "" {
		config.Server.HTTPAddress = *httpAddress
	}
	config.Apply()
	return server.Serve(ctx, config)
}
