package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kdrag0n/abootimg"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	flag "github.com/spf13/pflag"
)

// Text output formats
const (
	FormatInfo      = "info"
	FormatMkbootimg = "mkbootimg"
	FormatJSON      = "json"
)

var log = logrus.New()

type options struct {
	bootImg           string
	out               string
	format            string
	null              bool
	decompressRamdisk bool
	verbose           bool
}

func parseFlags(args []string) (*options, error) {
	var opts options

	fs := flag.NewFlagSet("unpack_bootimg", flag.ContinueOnError)
	fs.StringVar(&opts.bootImg, "boot_img", "", "Path to the boot, recovery or vendor_boot image.")
	fs.StringVar(&opts.out, "out", "out", "Output directory of the unpacked images.")
	fs.StringVar(&opts.format, "format", FormatInfo, "Text output format: info, mkbootimg or json.")
	fs.BoolVarP(&opts.null, "null", "0", false, "Separate mkbootimg arguments with NUL instead of spaces.")
	fs.BoolVar(&opts.decompressRamdisk, "decompress_ramdisk", false, "Also write the decompressed ramdisk to <out>/ramdisk.cpio.")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "Log progress to standard error.")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if opts.bootImg == "" && fs.NArg() > 0 {
		opts.bootImg = fs.Arg(0)
	}

	return &opts, opts.validate()
}

func (o *options) validate() error {
	if o.bootImg == "" {
		return errors.New("--boot_img is required")
	}

	switch o.format {
	case FormatInfo, FormatMkbootimg, FormatJSON:
	default:
		return fmt.Errorf("unknown format %q, expected info, mkbootimg or json", o.format)
	}

	fInfo, err := os.Stat(o.bootImg)
	if err != nil {
		return err
	}
	if fInfo.IsDir() {
		return fmt.Errorf("%s is a directory", o.bootImg)
	}

	return nil
}

func checkMsg(err error, msg string) {
	if err != nil {
		errs := abootimg.GetErrors(err)
		entry := log.WithField("error", errs[0])
		if len(errs) > 1 {
			entry = entry.WithField("cause", errs[1])
		}

		entry.Errorf("Error %s!", msg)
		os.Exit(2)
	}
}

func setupLogging(verbose bool, stderr io.Writer) {
	log.SetOutput(stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.WarnLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
}

func main() {
	setupLogging(false, os.Stderr)

	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	checkMsg(err, "parsing arguments")

	setupLogging(opts.verbose, os.Stderr)

	if opts.null && opts.format == FormatMkbootimg && isatty.IsTerminal(os.Stdout.Fd()) {
		log.Warn("Writing NUL-separated arguments to a terminal")
	}

	err = unpackImage(opts, os.Stdout)
	checkMsg(err, "unpacking image")
}
