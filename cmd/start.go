package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luma/beacon/executor"
	"github.com/luma/beacon/internal/env"
	"github.com/luma/beacon/reactor"
	"github.com/luma/beacon/stream"
	"github.com/luma/beacon/transport"
)

var (
	// The host to listen on
	host string

	// The port to listen for http requests on
	httpPort string

	// The port to listen for tcp clients on
	port int

	// Whether to set SO_REUSEPORT on the listening socket
	reuseport bool
)

func init() {
	flags := StartCmd.PersistentFlags()

	flags.IntVarP(&port, "port", "p", 25565, "The port to listen for client connections on")
	flags.StringVar(&httpPort, "http-port", "7362", "The port to listen to HTTP requests on")
	flags.StringVarP(&host, "host", "a", "0.0.0.0", "The host to listen on")
	flags.BoolVar(&reuseport, "reuseport", true, "Set SO_REUSEPORT on the listening socket")
}

var StartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Beacon protocol service",
	Long: `Start the Beacon protocol service

Usage
	beacon start

`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx, signalStop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
		defer signalStop()

		log, err := env.MakeLogger()
		if err != nil {
			return err
		}

		fileLimit, err := setFileLimit()
		if err != nil {
			return err
		}

		log.Info("Set file limit", zap.Uint64("fileLimit", fileLimit))

		conf, err := env.LoadConfig(ctx)
		if err != nil {
			return err
		}

		reactorLog := log.Named("reactor")
		rx, err := reactor.New(reactorLog)
		if err != nil {
			return err
		}
		if conf.TickIntervalMs > 0 {
			if err := rx.SetTickNanos(conf.TickIntervalMs * uint64(time.Millisecond)); err != nil {
				return err
			}
		}

		exec, err := executor.New()
		if err != nil {
			return err
		}
		if err := rx.Insert(exec); err != nil {
			return err
		}

		transportLog := log.Named("transport")
		ln, err := transport.NewListener(rx, transport.Options{
			Host:            host,
			Port:            port,
			Reuseport:       reuseport,
			MaxPacketSize:   conf.MaxPacketSize,
			StackBufferSize: conf.StackBufferSize,
			Log:             transportLog,
		}, echoHandler(transportLog))
		if err != nil {
			return err
		}
		if err := rx.Insert(ln); err != nil {
			return err
		}

		router := setupRouter(conf.DebugHTTP, log)

		// Ping test
		router.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		// Reports live descriptor/ready-queue counts for operators.
		router.GET("/debug/reactor", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"descriptors": rx.DescriptorCount(),
				"readyQueue":  rx.ReadyQueueLen(),
				"tickNanos":   rx.TickNanos(),
			})
		})

		s := &http.Server{
			Addr:    net.JoinHostPort(host, httpPort),
			Handler: router,
		}

		// Initializing the server in a goroutine so that
		// it won't block the graceful shutdown handling below
		go func() {
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Http server errored", zap.Error(err))
			}
		}()

		reactorDone := make(chan error, 1)
		go func() {
			for ctx.Err() == nil {
				if err := rx.Execute(); err != nil {
					reactorDone <- err
					return
				}
			}
			reactorDone <- nil
		}()

		log.Info("Listening",
			zap.Any("config", conf),
			zap.String("host", host),
			zap.Int("port", port),
			zap.String("httpPort", httpPort))

		select {
		case <-ctx.Done():
		case err := <-reactorDone:
			if err != nil {
				log.Error("Reactor loop errored", zap.Error(err))
			}
		}

		// Restore default behavior on the interrupt signal and notify user of shutdown.
		signalStop()
		log.Info("Shutting down gracefully, press Ctrl+C again to force")

		if err := rx.Wake(); err != nil {
			log.Warn("Failed to wake reactor for shutdown", zap.Error(err))
		}

		// The context is used to inform the server it has 5 seconds to finish
		// the request it is currently handling
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.SetKeepAlivesEnabled(false)

		if err := s.Shutdown(shutdownCtx); err != nil {
			log.Error("Http server forced to shutdown", zap.Error(err))
		}

		if err := ln.Close(); err != nil {
			log.Error("Listener forced to shutdown", zap.Error(err))
		}

		if err := rx.Close(); err != nil {
			log.Error("Reactor forced to shutdown", zap.Error(err))
		}

		log.Info("Exiting")
		return nil
	},
}

// lengthReporter is satisfied by stream.BufferInput, the concrete
// Reader every Connection hands to its DataHandler; it lets
// echoHandler drain a packet body without a fixed-size guess.
type lengthReporter interface {
	Len() int
}

// echoHandler builds a DataHandler that writes each packet body
// straight back to its sender, length-prefixed the same way it
// arrived. It stands in for a game-specific packet dispatch table,
// which is out of scope for the protocol library itself.
func echoHandler(log *zap.Logger) transport.DataHandler {
	return func(conn *transport.Connection, body stream.Reader) error {
		lr, ok := body.(lengthReporter)
		if !ok {
			return nil
		}

		out := stream.NewBufferOutput()
		var chunk [4096]byte
		for lr.Len() > 0 {
			n := lr.Len()
			if n > len(chunk) {
				n = len(chunk)
			}
			if err := body.Read(chunk[:n]); err != nil {
				return err
			}
			if err := out.Write(chunk[:n]); err != nil {
				return err
			}
		}

		log.Debug("Echoing packet", zap.Int("size", len(out.Raw())))
		return conn.WriteShared(out.LengthPrefixed())
	}
}

func setupRouter(debugHTTP bool, log *zap.Logger) *gin.Engine {
	gin.DisableConsoleColor()
	if !debugHTTP {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Add a ginzap middleware, which:
	//   - Logs all requests, like a combined access and error log.
	//   - Logs to stdout.
	//   - RFC3339 with UTC time format.
	r.Use(ginzap.Ginzap(log, time.RFC3339, true))

	r.Use(ginzap.GinzapWithConfig(log, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/health"},
	}))

	// Logs all panic to error log
	//   - stack means whether output the stack info.
	r.Use(ginzap.RecoveryWithZap(log, true))

	return r
}

func setFileLimit() (uint64, error) {
	var rLimit syscall.Rlimit

	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		return 0, err
	}

	rLimit.Cur = rLimit.Max
	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		return 0, err
	}

	return rLimit.Cur, nil
}
