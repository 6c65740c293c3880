// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package visualize renders the resource-allocation graph as a PNG.
//
// Positions come from a force-directed spring embedding with a fixed seed,
// so the same snapshot always renders the same image. Process nodes are
// indigo, resource nodes emerald, on a dark slate background.
package visualize

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/fogleman/gg"
	"gonum.org/v1/gonum/graph/layout"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/AleutianAI/gridlock/services/deadlock/rag"
)

const (
	canvasWidth  = 800
	canvasHeight = 600

	backgroundColor = "#1e293b"
	processColor    = "#6366f1"
	resourceColor   = "#10b981"
	edgeColor       = "#ffffff"
	labelColor      = "#ffffff"

	graphTitle = "Resource Allocation Graph"

	nodeRadius  = 26.0
	arrowLength = 10.0
	margin      = 60.0
	titleBand   = 40.0

	layoutSeed    = 42
	layoutUpdates = 80
)

// RenderBase64 renders the snapshot and returns the PNG base64-encoded for
// embedding in a JSON payload.
func RenderBase64(snapshot map[string]rag.Entry) (string, error) {
	png, err := RenderPNG(snapshot)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}

// RenderPNG renders the snapshot's resource-allocation graph.
// Returns rag.ErrEmptyStore when there is nothing to draw.
func RenderPNG(snapshot map[string]rag.Entry) ([]byte, error) {
	if len(snapshot) == 0 {
		return nil, rag.ErrEmptyStore
	}

	g := rag.BuildGraph(snapshot)
	positions := nodePositions(g)

	dc := gg.NewContext(canvasWidth, canvasHeight)
	dc.SetHexColor(backgroundColor)
	dc.Clear()

	dc.SetHexColor(labelColor)
	dc.DrawStringAnchored(graphTitle, canvasWidth/2, titleBand/2, 0.5, 0.5)

	dc.SetLineWidth(1.5)
	for _, e := range g.Edges() {
		drawEdge(dc, positions[e[0]], positions[e[1]])
	}
	for _, name := range g.SelfLoops {
		drawSelfLoop(dc, positions[name])
	}

	for _, name := range g.Nodes() {
		p := positions[name]
		if g.IsProcess(name) {
			dc.SetHexColor(processColor)
		} else {
			dc.SetHexColor(resourceColor)
		}
		dc.DrawCircle(p.X, p.Y, nodeRadius)
		dc.Fill()

		dc.SetHexColor(labelColor)
		dc.DrawStringAnchored(name, p.X, p.Y, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode graph image: %w", err)
	}
	return buf.Bytes(), nil
}

// nodePositions runs the seeded spring embedding and rescales the result to
// the drawable area below the title band.
func nodePositions(g *rag.Graph) map[string]r2.Vec {
	eades := layout.EadesR2{
		Repulsion: 1,
		Rate:      0.05,
		Updates:   layoutUpdates,
		Theta:     0.15,
		Src:       rand.NewPCG(layoutSeed, layoutSeed),
	}
	opt := layout.NewOptimizerR2(g.Directed, eades.Update)
	for opt.Update() {
	}

	names := g.Nodes()
	raw := make(map[string]r2.Vec, len(names))
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, name := range names {
		id, ok := g.ID(name)
		if !ok {
			continue
		}
		v := opt.Coord2(id)
		raw[name] = v
		minX, maxX = math.Min(minX, v.X), math.Max(maxX, v.X)
		minY, maxY = math.Min(minY, v.Y), math.Max(maxY, v.Y)
	}

	spanX, spanY := maxX-minX, maxY-minY
	drawW := float64(canvasWidth) - 2*margin
	drawH := float64(canvasHeight) - titleBand - 2*margin

	positions := make(map[string]r2.Vec, len(raw))
	for name, v := range raw {
		x := float64(canvasWidth) / 2
		y := titleBand + margin + drawH/2
		if spanX > 0 {
			x = margin + (v.X-minX)/spanX*drawW
		}
		if spanY > 0 {
			y = titleBand + margin + (v.Y-minY)/spanY*drawH
		}
		positions[name] = r2.Vec{X: x, Y: y}
	}
	return positions
}

// drawEdge draws a directed edge between two node circles, arrowhead at the
// target boundary.
func drawEdge(dc *gg.Context, from, to r2.Vec) {
	dx, dy := to.X-from.X, to.Y-from.Y
	dist := math.Hypot(dx, dy)
	if dist < 1 {
		return
	}
	ux, uy := dx/dist, dy/dist

	startX, startY := from.X+ux*nodeRadius, from.Y+uy*nodeRadius
	tipX, tipY := to.X-ux*nodeRadius, to.Y-uy*nodeRadius
	endX, endY := tipX-ux*arrowLength, tipY-uy*arrowLength

	dc.SetHexColor(edgeColor)
	dc.DrawLine(startX, startY, endX, endY)
	dc.Stroke()

	// Arrowhead: isoceles triangle at the boundary of the target node.
	px, py := -uy, ux
	halfWidth := arrowLength * 0.45
	dc.MoveTo(tipX, tipY)
	dc.LineTo(endX+px*halfWidth, endY+py*halfWidth)
	dc.LineTo(endX-px*halfWidth, endY-py*halfWidth)
	dc.ClosePath()
	dc.Fill()
}

// drawSelfLoop draws a small loop above a node whose entry points back at
// itself.
func drawSelfLoop(dc *gg.Context, at r2.Vec) {
	loopRadius := nodeRadius * 0.55
	dc.SetHexColor(edgeColor)
	dc.DrawCircle(at.X, at.Y-nodeRadius-loopRadius*0.9, loopRadius)
	dc.Stroke()
}
