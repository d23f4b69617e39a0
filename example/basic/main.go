package main

import (
	"context"
	"fmt"
	"log"

	"github.com/siherrmann/bridger"
	"github.com/siherrmann/bridger/helper"
	"github.com/siherrmann/bridger/model"
)

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	b, err := bridger.NewBridger(dbConfig, 384)
	if err != nil {
		log.Fatalf("Failed to create bridger: %v", err)
	}
	defer b.Close()

	// Build a small citation graph: fish oil and Raynaud's disease, the
	// classic literature-based discovery constellation. Fish oil relates to
	// blood viscosity, blood viscosity relates to Raynaud's disease, but no
	// direct connection between fish oil and Raynaud's exists yet.
	fishOil := insertResource(b, "paper", map[string]interface{}{"title": "Dietary fish oil and blood lipids"})
	viscosity := insertResource(b, "concept", map[string]interface{}{"name": "blood viscosity"})
	raynauds := insertResource(b, "condition", map[string]interface{}{"name": "Raynaud's disease"})

	insertEdge(b, fishOil, viscosity, 0.8)
	insertEdge(b, viscosity, raynauds, 0.6)

	// Open discovery: which resources could fish oil relate to?
	fmt.Println("Open discovery from fish oil...")
	open, err := b.OpenDiscovery(context.Background(), fishOil.ID, nil)
	if err != nil {
		log.Fatalf("Failed open discovery: %v", err)
	}
	for _, hypothesis := range open {
		fmt.Printf("  candidate %s via %d bridge(s), plausibility %.3f, path strength %.3f\n",
			hypothesis.CID, hypothesis.CommonNeighborCount, hypothesis.PlausibilityScore, hypothesis.PathStrength)
	}

	// Closed discovery: how plausibly does fish oil relate to Raynaud's?
	fmt.Println("\nClosed discovery fish oil -> Raynaud's disease...")
	closed, err := b.ClosedDiscovery(context.Background(), fishOil.ID, raynauds.ID, nil)
	if err != nil {
		log.Fatalf("Failed closed discovery: %v", err)
	}
	for _, hypothesis := range closed {
		fmt.Printf("  path over %d hop(s) via %v, plausibility %.3f\n",
			hypothesis.HopCount, hypothesis.BridgeIDs, hypothesis.PlausibilityScore)
	}

	// A reviewer confirms the open hypothesis; the edges along the bridge
	// path get reinforced so future queries rank this connection higher.
	if len(open) > 0 {
		note := "confirmed by clinical trial"
		validated, err := b.Validate(context.Background(), open[0].ID, true, &note)
		if err != nil {
			log.Fatalf("Failed to validate hypothesis: %v", err)
		}
		fmt.Printf("\nValidated hypothesis %s (%s)\n", validated.ID, validated.ValidationState)

		edge, err := b.Edges.SelectEdgeBetween(fishOil.ID, viscosity.ID)
		if err != nil {
			log.Fatalf("Failed to read edge: %v", err)
		}
		fmt.Printf("Reinforced fish oil -> viscosity edge weight: %.3f\n", edge.Weight)
	}

	// Ranked neighborhood exploration around the bridge concept
	fmt.Println("\nNeighbors of blood viscosity (2 hops):")
	neighbors, err := b.Neighbors(context.Background(), viscosity.ID, 2, nil)
	if err != nil {
		log.Fatalf("Failed neighbors query: %v", err)
	}
	for _, neighbor := range neighbors {
		fmt.Printf("  %s at hop %d, score %.3f (strength %.3f, novelty %.2f)\n",
			neighbor.ResourceID, neighbor.Hops, neighbor.Score, neighbor.PathStrength, neighbor.Novelty)
	}
}

func insertResource(b *bridger.Bridger, resourceType string, metadata model.Metadata) *model.ResourceRef {
	resource := &model.ResourceRef{
		ResourceType: resourceType,
		Metadata:     metadata,
	}
	if err := b.Resources.InsertResource(resource); err != nil {
		log.Fatalf("Failed to insert resource: %v", err)
	}
	return resource
}

func insertEdge(b *bridger.Bridger, u *model.ResourceRef, v *model.ResourceRef, weight float64) {
	edge := &model.GraphEdge{
		NodeA:    u.ID,
		NodeB:    v.ID,
		EdgeType: model.EdgeTypeCitation,
		Weight:   weight,
		Metadata: model.Metadata{},
	}
	if err := b.Edges.InsertEdge(edge); err != nil {
		log.Fatalf("Failed to insert edge: %v", err)
	}
}
