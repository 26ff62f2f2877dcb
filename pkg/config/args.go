package config

import "flag"

// CommandLineArgs holds flag values and whether each was given explicitly.
type CommandLineArgs struct {
	ConfigFile string

	Debug          bool
	DebugSpecified bool

	DBPath          string
	DBPathSpecified bool

	ListenAddr          string
	ListenAddrSpecified bool

	HTTPPort          int
	HTTPPortSpecified bool

	AudioPort          string
	AudioPortSpecified bool
}

// ParseCommandLineArgs parses the process flags into CommandLineArgs.
func ParseCommandLineArgs(fs *flag.FlagSet, arguments []string) (CommandLineArgs, error) {
	var args CommandLineArgs

	fs.StringVar(&args.ConfigFile, "config", "", "Path to TOML config file (default: ./"+DefaultConfigFile+")")
	fs.BoolVar(&args.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&args.DBPath, "db", "", "Path to database file (default: ~/.config/lightd/lightd.db)")
	fs.StringVar(&args.ListenAddr, "listen", "", "Address for incoming color data")
	fs.IntVar(&args.HTTPPort, "http-port", 0, "HTTP control port")
	fs.StringVar(&args.AudioPort, "audio-port", "", "Serial port to forward audio peaks to")

	if err := fs.Parse(arguments); err != nil {
		return args, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "debug":
			args.DebugSpecified = true
		case "db":
			args.DBPathSpecified = true
		case "listen":
			args.ListenAddrSpecified = true
		case "http-port":
			args.HTTPPortSpecified = true
		case "audio-port":
			args.AudioPortSpecified = true
		}
	})

	return args, nil
}
