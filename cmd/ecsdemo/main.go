// Command ecsdemo spawns a small population of entities, runs them through
// a movement stage, wires up the reactive spatial index and parent/child
// relationships, and persists component state to a bbolt-backed store,
// end to end, to exercise the runtime's core packages
// outside of a test binary.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/RazeLighter777/melon/pkg/components"
	"github.com/RazeLighter777/melon/pkg/ecs"
	"github.com/RazeLighter777/melon/pkg/kvstore"
	"github.com/RazeLighter777/melon/pkg/logging"
	"github.com/RazeLighter777/melon/pkg/spatial"
)

var (
	entityCount = flag.Int("entities", 100, "number of entities to spawn")
	stateDir    = flag.String("state-dir", "", "directory for the persisted entity store (temp dir if empty)")
)

type moveSystem struct{}

func (moveSystem) Query() ecs.Query {
	q := ecs.NewQueryBuilder()
	ecs.With[components.Position](q)
	return q.Build()
}

func (moveSystem) Execute(result *ecs.QueryResult, view ecs.WorldView, writer *ecs.ResourceWriter) error {
	for _, g := range result.Groups() {
		pos, _ := ecs.Write[components.Position](g)
		pos.X++
	}
	return nil
}

func main() {
	flag.Parse()
	logger := logging.NewLoggerFromEnv()

	dir := *stateDir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "ecsdemo-state")
		if err != nil {
			log.Fatalf("creating state dir: %v", err)
		}
		dir = tmp
	}
	store, err := kvstore.OpenWithLogger(filepath.Join(dir, "entities.db"), logger)
	if err != nil {
		log.Fatalf("opening entity store: %v", err)
	}
	defer store.Close()
	kvstore.Register[components.Position](store)
	kvstore.Register[components.Name](store)

	positions := spatial.NewPositionMap(spatial.Bounds{X: 0, Y: 0, Width: 10000, Height: 10000}, 16)

	wb := ecs.NewWorldBuilderWithLogger(logger)
	wb.WithLoader(store)
	wb.WithUnloader(store)
	ecs.WithResource(wb, positions)
	ecs.WithTypedHook[components.Position](wb, spatial.PositionIndexHook)
	ecs.WithTypedHook[components.Children](wb, components.ChildrenHook)
	ecs.WithTypedHook[components.Parent](wb, components.ParentRemovedHook)
	world := wb.Build()

	childIDs := make([]ecs.EntityID, *entityCount)
	for i := 0; i < *entityCount; i++ {
		b := world.AddEntity()
		ecs.WithComponent(b, components.Position{X: int32(i), Y: int32(i)})
		id, err := b.Spawn()
		if err != nil {
			log.Fatalf("spawning entity %d: %v", i, err)
		}
		childIDs[i] = id
	}

	originID, err := spawnNamedWithChildren(world, "origin", 0, 0, childIDs)
	if err != nil {
		log.Fatalf("spawning origin entity: %v", err)
	}

	children, _ := ecs.GetComponent[components.Children](world, originID)
	logger.WithFields(map[string]interface{}{
		"entities": world.NumberOfEntities(),
		"children": len(children.Entities),
	}).Info("population spawned")

	stage := ecs.NewStageBuilder().WithSystem(moveSystem{}).Build()
	if err := world.ExecuteStage(stage); err != nil {
		log.Fatalf("executing movement stage: %v", err)
	}

	nearest := positions.GetNearest(0, 0, 5)
	fmt.Printf("spawned %d entities under %d, %d nearest the origin after one move: %v\n",
		*entityCount, originID, len(nearest), nearest)
}

func spawnNamedWithChildren(world *ecs.World, name string, x, y int32, children []ecs.EntityID) (ecs.EntityID, error) {
	b := world.AddEntity()
	ecs.WithComponent(b, components.Position{X: x, Y: y})
	ecs.WithComponent(b, components.Name{Name: name})
	ecs.WithComponent(b, components.Children{Entities: children})
	return b.Spawn()
}
