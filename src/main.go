package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/url"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/graphdaw/fmasynth/src/audio"
	"golang.org/x/sync/errgroup"
)

var (
	sockFileName = flag.String("socket", "/tmp/fma-synth.sock", "unix socket to accept commands on")
	patchFile    = flag.String("patch", "", "JSON patch applied over the defaults")
	watch        = flag.Bool("watch", false, "reload -patch when it changes")
	useMidi      = flag.Bool("midi", true, "listen to the first MIDI IN port")
	useKeys      = flag.Bool("keys", false, "play notes from the terminal keyboard instead of the socket")
	seed         = flag.Int64("seed", 1, "noise seed")
	fftWindow    = flag.String("fft-window", "han", "window for spectrum reports: han, hamming or blackman")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Lshortfile)
	log.Printf("NumCPU: %v\n", runtime.NumCPU())

	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	patch, err := loadPatch(*patchFile)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	window, err := audio.WindowByName(*fftWindow)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	player, err := audio.NewAudio(*seed, patch, window)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	defer player.Close()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(signalCh)
		cancel()
	}()
	go func() {
		sig := <-signalCh
		log.Printf("Caught signal %s: shutting down...\n", sig)
		cancel()
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return player.Start(ctx)
	})
	if *useMidi {
		g.Go(func() error {
			return player.ListenMidi(ctx)
		})
	}
	if *watch && *patchFile != "" {
		g.Go(func() error {
			return audio.WatchPatch(ctx, *patchFile, player.ApplyPatch)
		})
	}
	// the session ends with the keyboard or the IPC connection
	if *useKeys {
		g.Go(func() error {
			defer cancel()
			return playKeyboard(ctx, os.Stdin, player.CommandCh)
		})
	} else {
		g.Go(func() error {
			defer cancel()
			return withIPCConnection(ctx, func(conn net.Conn) error {
				g, ctx := errgroup.WithContext(ctx)
				g.Go(func() error {
					return receiveCommands(ctx, conn, player.CommandCh)
				})
				g.Go(func() error {
					return sendReports(ctx, conn, player)
				})
				return g.Wait()
			})
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("error: %v\n", err)
	}
	log.Println("main() ended.")
}

func loadPatch(path string) (*audio.Patch, error) {
	patch := audio.DefaultPatch()
	if path == "" {
		return patch, nil
	}
	p, err := audio.LoadPatch(path)
	if err != nil {
		return nil, err
	}
	log.Printf("loaded patch %s\n", path)
	return patch.Merge(p), nil
}

func withIPCConnection(ctx context.Context, f func(net.Conn) error) error {
	os.Remove(*sockFileName)
	listener, err := new(net.ListenConfig).Listen(ctx, "unix", *sockFileName)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		listener.Close()
	}()
	defer func() {
		log.Println("Closing IPC...")
		err := listener.Close()
		if err != nil && !isClosedErr(err) {
			log.Printf("error while closing listener: %v", err)
		}
		os.Remove(*sockFileName)
	}()
	log.Printf("start listening on %s...\n", *sockFileName)
	conn, err := listener.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	defer func() {
		err := conn.Close()
		if err != nil && !isClosedErr(err) {
			log.Printf("error while closing connection: %v", err)
		}
	}()
	return f(conn)
}

func isClosedErr(err error) bool {
	return strings.Contains(err.Error(), "use of closed network connection")
}

func receiveCommands(ctx context.Context, conn net.Conn, commandCh chan<- []string) error {
	reader := bufio.NewReader(conn)
	var line []byte
loop:
	for {
		select {
		case <-ctx.Done():
			log.Println("Connection interrupted")
			break loop
		default:
		}
		next, isPrefix, err := reader.ReadLine()
		if err == io.EOF {
			break loop
		}
		if err != nil {
			if ctx.Err() != nil {
				break loop
			}
			return err
		}
		line = append(line, next...)
		if isPrefix {
			continue
		}
		command, err := parseCommand(string(line))
		if err != nil {
			log.Printf("skipped %q: %v\n", string(line), err)
		} else {
			commandCh <- command
			log.Printf("received: %s\n", string(line))
		}
		line = []byte{}
	}
	log.Println("receiveCommands() ended.")
	return nil
}

func parseCommand(line string) ([]string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, fmt.Errorf("empty command")
	}
	lineStr := strings.Split(line, " ")
	for i, item := range lineStr {
		escaped, err := url.QueryUnescape(item)
		if err != nil {
			return nil, err
		}
		lineStr[i] = escaped
	}
	return lineStr, nil
}

func sendReports(ctx context.Context, conn net.Conn, audio *audio.Audio) error {
	t := time.NewTicker(time.Second / 60)
	defer t.Stop()
loop:
	for {
		select {
		case <-ctx.Done():
			log.Println("sendReports() interrupted")
			break loop
		case <-t.C:
			result := audio.GetFFT()
			s := "fft"
			for _, value := range result {
				s += " " + strconv.FormatFloat(value, 'f', 6, 64)
			}
			s += "\nenv " + strconv.FormatFloat(audio.Peak(), 'f', 6, 64)
			if _, err := conn.Write([]byte(s + "\n")); err != nil {
				if ctx.Err() != nil {
					break loop
				}
				return err
			}
		}
	}
	log.Println("sendReports() ended.")
	return nil
}
