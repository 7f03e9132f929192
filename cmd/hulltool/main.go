// hulltool is a CLI utility for working with HullView .hpk hull packs.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/Faultbox/hullview/internal/engine/model"
	"github.com/Faultbox/hullview/internal/engine/picking"
	"github.com/Faultbox/hullview/internal/engine/scene"
	"github.com/Faultbox/hullview/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "gen":
		cmdGen(args)
	case "info":
		cmdInfo(args)
	case "objects", "ls":
		cmdObjects(args)
	case "tri":
		cmdTri(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`hulltool - HullView hull pack utility

Usage:
  hulltool <command> [options]

Commands:
  gen [-shards N] <output_dir>                 Write the demo hull as one pack per shard
  info <file.hpk>                              Show pack header and object counts
  objects [-n N] <file.hpk>                    List objects with their vertex runs
  tri [-residency local|remote] <file.hpk> <index>
                                               Resolve a pick index to its owner and triangle

Examples:
  hulltool gen -shards 3 ./packs
  hulltool info ./packs/shard0.hpk
  hulltool tri -residency remote ./packs/shard0.hpk 14`)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func cmdGen(args []string) {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	shards := fs.Int("shards", 3, "Number of shards (1-8)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fail("Usage: hulltool gen [-shards N] <output_dir>")
	}
	outputDir := fs.Arg(0)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fail("Error creating directory: %v", err)
	}

	for i, data := range scene.DemoHull(*shards) {
		path := filepath.Join(outputDir, fmt.Sprintf("shard%d.hpk", i))
		pack := scene.HPKFromShardData(uint8(i), data)
		if err := formats.WriteHPKFile(path, pack); err != nil {
			fail("Error writing %s: %v", path, err)
		}
		fmt.Printf("Wrote: %s (%d vertices, %d objects)\n", path, len(pack.Vertices), len(pack.Objects))
	}
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fail("Usage: hulltool info <file.hpk>")
	}

	pack, err := formats.ReadHPKFile(args[0])
	if err != nil {
		fail("Error: %v", err)
	}
	h := pack.Header

	fmt.Printf("Pack:     %s\n", args[0])
	fmt.Printf("Version:  %s\n", h.Version)
	fmt.Printf("Shard:    %d\n", h.Shard)
	fmt.Printf("Vertices: %d\n", h.VertexCount)
	fmt.Printf("Indices:  %d\n", h.IndexCount)
	fmt.Printf("Objects:  %d\n", h.ObjectCount)
	fmt.Printf("Bounds:   %v - %v\n", h.Bounds.Min, h.Bounds.Max)
	fmt.Println()
	fmt.Println("Objects by type:")

	typeCount := make(map[int32]int)
	for _, obj := range pack.Objects {
		typeCount[pack.Vertices[obj.Start].MaterialType()]++
	}

	type typeStat struct {
		materialType int32
		count        int
	}
	var stats []typeStat
	for ty, count := range typeCount {
		stats = append(stats, typeStat{ty, count})
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].count > stats[j].count
	})

	for _, s := range stats {
		fmt.Printf("  type %-4d %d\n", s.materialType, s.count)
	}
}

func cmdObjects(args []string) {
	fs := flag.NewFlagSet("objects", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N objects (0 = all)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fail("Usage: hulltool objects [-n N] <file.hpk>")
	}

	pack, err := formats.ReadHPKFile(fs.Arg(0))
	if err != nil {
		fail("Error: %v", err)
	}

	for i, obj := range pack.Objects {
		if *limit > 0 && i >= *limit {
			fmt.Fprintf(os.Stderr, "\n(showing first %d of %d objects)\n", *limit, len(pack.Objects))
			break
		}
		b := pack.ObjectBounds[obj.BBoxSlot]
		fmt.Printf("%8d  vertices %6d..%-6d  type %-3d  %v - %v\n",
			obj.ID, obj.Start, obj.End, pack.Vertices[obj.Start].MaterialType(), b.Min, b.Max)
	}
}

func cmdTri(args []string) {
	fs := flag.NewFlagSet("tri", flag.ExitOnError)
	residencyName := fs.String("residency", "local", "Vertex residency: local or remote")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fail("Usage: hulltool tri [-residency local|remote] <file.hpk> <index>")
	}
	residency, err := scene.ParseResidency(*residencyName)
	if err != nil {
		fail("Error: %v", err)
	}
	index, err := strconv.ParseUint(fs.Arg(1), 10, 32)
	if err != nil {
		fail("Invalid index %q: %v", fs.Arg(1), err)
	}

	set, readers, err := scene.LoadPacks([]string{fs.Arg(0)}, residency)
	if err != nil {
		fail("Error: %v", err)
	}
	defer func() {
		for _, r := range readers {
			r.Close()
		}
	}()

	owner, tri, ok := set.TriangleForIndex(0, uint32(index))
	if !ok {
		fmt.Printf("Index %d: no triangle (%s residency)\n", index, residency)
		return
	}
	packed, err := picking.PackChecked(uint32(index), 0)
	if err != nil {
		fail("Error: %v", err)
	}
	printTriangle(uint32(index), packed, owner, tri, residency)
}

func printTriangle(index, packed uint32, owner int32, tri model.Triangle, residency scene.Residency) {
	fmt.Printf("Index:    %d (%s residency)\n", index, residency)
	fmt.Printf("Texel:    %d\n", packed)
	fmt.Printf("Object:   %d\n", owner)
	for i, p := range tri.Points() {
		fmt.Printf("P%d:       (%g, %g, %g)\n", i, p.X, p.Y, p.Z)
	}
	n := tri.UnitNormal()
	fmt.Printf("Normal:   (%.4f, %.4f, %.4f)\n", n.X, n.Y, n.Z)
}
