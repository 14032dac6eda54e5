package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"tonorg/internal/app/organizer"
	"tonorg/internal/app/organizer/audio"
	"tonorg/internal/app/organizer/proc"
	"tonorg/internal/app/organizer/upload"
	"tonorg/internal/configs"
)

var opts struct {
	Conf   string `short:"c" long:"conf" env:"TONORG_CONF" default:"tonorg.yml" description:"config file (yml)"`
	DB     string `short:"d" long:"db" env:"TONORG_DB" default:"var/tonorg.bdb" description:"bolt db file for the duration cache"`
	Input  string `short:"i" long:"input" description:"input folder with album and podcast sources"`
	Output string `short:"o" long:"output" description:"output folder for the device tree"`
	Update bool   `short:"u" long:"update" description:"Update RSS feeds and download new episodes"`
	Upload bool   `long:"upload" description:"Upload organized files to cloud storage"`

	Dbg bool `long:"dbg" env:"DEBUG" description:"show debug info"`
}

func checkFileExists(filepath string) bool {
	if _, err := os.Stat(filepath); errors.Is(err, os.ErrNotExist) {
		return false
	}

	return true
}

func main() {
	p := flags.NewParser(&opts, flags.PassDoubleDash|flags.HelpFlag)
	if _, err := p.Parse(); err != nil {
		if err.(*flags.Error).Type != flags.ErrHelp {
			fmt.Printf("%v\n", err)
			os.Exit(1)
		}
		p.WriteHelp(os.Stderr)
		os.Exit(2)
	}

	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if opts.Dbg {
		logOpts = append(logOpts, lgr.Debug, lgr.CallerFile, lgr.CallerFunc)
	}
	logger := lgr.New(logOpts...)

	conf := configs.Default()
	if checkFileExists(opts.Conf) {
		loaded, err := configs.Load(opts.Conf)
		if err != nil {
			logger.Logf("[ERROR] can't load config %s, %v", opts.Conf, err)
			os.Exit(1)
		}
		conf = loaded
	}
	if opts.Input != "" {
		conf.Input = opts.Input
	}
	if opts.Output != "" {
		conf.Output = opts.Output
	}

	var cache *audio.Cache
	db, err := organizer.NewBoltDB(opts.DB)
	if err != nil {
		logger.Logf("[WARN] can't open duration cache %s, probing without cache, %v", opts.DB, err)
	} else {
		cache = &audio.Cache{DB: db}
		defer db.Close() // nolint
	}

	prober := audio.NewProber(cache, logger)
	processor := proc.NewProcessor(prober.Duration, logger)

	var s3store *upload.S3Store
	if conf.CloudStorage.EndPointURL != "" {
		s3client, err := organizer.NewS3Client(
			conf.CloudStorage.EndPointURL,
			conf.CloudStorage.Secrets.Key,
			conf.CloudStorage.Secrets.Secret,
			true)
		if err != nil {
			logger.Logf("[ERROR] can't create s3client instance, %v", err)
			os.Exit(1)
		}
		s3store = upload.NewS3Store(s3client, conf.CloudStorage.Region, conf.CloudStorage.Bucket, logger)
	}

	app, err := organizer.NewApplication(conf, processor, s3store, logger)
	if err != nil {
		logger.Logf("[ERROR] can't create app, %v", err)
		os.Exit(1)
	}

	stats := app.Organize(opts.Update)
	if stats.Errors > 0 {
		logger.Logf("[WARN] finished with %d error(s)", stats.Errors)
	}

	if opts.Upload {
		if err := app.Upload(context.Background()); err != nil {
			logger.Logf("[ERROR] upload failed, %v", err)
			os.Exit(1)
		}
	}
}
