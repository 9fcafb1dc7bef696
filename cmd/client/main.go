// Command client is a headless consumer of the protocol: it connects to a
// running demoserver, renders every surface update to stdout as a tree, and
// lets a person at a terminal fire actions by typing their name — standing
// in for the React bridge a browser would use instead (spec.md §6).
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/a2ui-go/a2ui/internal/bridge"
	"github.com/a2ui-go/a2ui/internal/config"
	"github.com/a2ui-go/a2ui/internal/render"
	"github.com/a2ui-go/a2ui/internal/schema"
	"github.com/a2ui-go/a2ui/pkg/a2ui"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const surfaceID = "main"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := config.Load()
	rt, err := a2ui.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("client: runtime init failed")
	}

	provider := rt.Provider(surfaceID)
	rt.Dispatcher.OnChange(func(changedSurface string) {
		if changedSurface != surfaceID {
			return
		}
		fmt.Println("--- surface updated ---")
		printNode(provider.State(), 0)
	})
	provider.OnAction(func(action bridge.ResolvedAction) {
		fmt.Printf("--- action: %s %v ---\n", action.Name, action.Context)
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := rt.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("client: session ended")
		}
	}()

	go readActionCommands(ctx, provider)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rt.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("client: shutdown error")
	}
}

// readActionCommands lets a person type an action name (e.g. "increment")
// to dispatch it with no resolved context, a terminal stand-in for a
// button's onClick firing.
func readActionCommands(ctx context.Context, provider *bridge.Provider) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		resp, err := provider.Dispatch(ctx, schema.Action{Name: name}, "terminal", "/")
		if err != nil {
			fmt.Println("dispatch error:", err)
			continue
		}
		fmt.Printf("action %q success=%v error=%q\n", name, resp.Success, resp.Error)
	}
}

func printNode(node *render.Node, depth int) {
	if node == nil {
		fmt.Println(strings.Repeat("  ", depth) + "(empty)")
		return
	}
	indent := strings.Repeat("  ", depth)
	if node.IsDiagnostic() {
		fmt.Printf("%s[!] %s: %s\n", indent, node.ID, node.Diagnostic)
		return
	}
	fmt.Printf("%s%s (%s) props=%v\n", indent, node.ID, node.Type, node.Props)
	for _, child := range node.Children {
		printNode(child, depth+1)
	}
}
