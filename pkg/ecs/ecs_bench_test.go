package ecs

import "testing"

func BenchmarkSpawnTenThousand(b *testing.B) {
	for i := 0; i < b.N; i++ {
		w := NewWorld()
		for j := 0; j < 10000; j++ {
			builder := w.AddEntity()
			WithComponent(builder, Name{Name: "test"})
			if _, err := builder.Spawn(); err != nil {
				b.Fatalf("spawn failed: %v", err)
			}
		}
		w.AddEntity().Spawn()
	}
}

type incrementXSystem struct{}

func (incrementXSystem) Query() Query {
	q := NewQueryBuilder()
	With[Position](q)
	return q.Build()
}

func (incrementXSystem) Execute(result *QueryResult, view WorldView, writer *ResourceWriter) error {
	for _, g := range result.Groups() {
		pos, _ := Write[Position](g)
		pos.X++
	}
	return nil
}

func BenchmarkExecuteStageOverTenThousand(b *testing.B) {
	w := NewWorld()
	for i := 0; i < 10000; i++ {
		builder := w.AddEntity()
		WithComponent(builder, Position{X: int32(i), Y: 0})
		WithComponent(builder, Name{Name: "test"})
		if _, err := builder.Spawn(); err != nil {
			b.Fatalf("spawn failed: %v", err)
		}
	}
	stage := NewStageBuilder().WithSystem(incrementXSystem{}).Build()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := w.ExecuteStage(stage); err != nil {
			b.Fatalf("ExecuteStage failed: %v", err)
		}
	}
}
