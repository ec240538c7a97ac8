package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/ironsheep/raster-tools-mcp/internal/raster"
	"github.com/ironsheep/raster-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("raster-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("raster-tools-mcp - MCP server for in-memory multi-band rasters")
			fmt.Println()
			fmt.Println("Usage: raster-tools-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  RASTER_MCP_LOG_LEVEL=debug   Enable debug logging")
			fmt.Println("  RASTER_MCP_EAGER=1           Allocate band planes when rasters are created")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if os.Getenv("RASTER_MCP_LOG_LEVEL") == "debug" {
		log.Printf("Raster MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
		raster.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	factory := raster.Factory{Eager: os.Getenv("RASTER_MCP_EAGER") == "1"}

	srv := server.New(factory)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
