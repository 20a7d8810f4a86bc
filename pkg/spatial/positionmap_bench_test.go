package spatial

import (
	"testing"

	"github.com/RazeLighter777/melon/pkg/components"
	"github.com/RazeLighter777/melon/pkg/ecs"
)

type shiftXSystem struct{}

func (shiftXSystem) Query() ecs.Query {
	q := ecs.NewQueryBuilder()
	ecs.With[components.Position](q)
	return q.Build()
}

func (shiftXSystem) Execute(result *ecs.QueryResult, view ecs.WorldView, writer *ecs.ResourceWriter) error {
	for _, g := range result.Groups() {
		pos, _ := ecs.Write[components.Position](g)
		pos.X++
	}
	return nil
}

func BenchmarkPositionMapNearestAfterStage(b *testing.B) {
	w, pm := newSpatialWorld()
	for i := 0; i < 10000; i++ {
		builder := w.AddEntity()
		ecs.WithComponent(builder, components.Position{X: int32(i), Y: 0})
		ecs.WithComponent(builder, components.Name{Name: "test"})
		if _, err := builder.Spawn(); err != nil {
			b.Fatalf("spawn failed: %v", err)
		}
	}
	stage := ecs.NewStageBuilder().WithSystem(shiftXSystem{}).Build()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := w.ExecuteStage(stage); err != nil {
			b.Fatalf("ExecuteStage failed: %v", err)
		}
		pm.GetNearest(0, 0, 10)
	}
}
