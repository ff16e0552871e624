package main

import (
	"fmt"
	"image/color"
	"os"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/tilewalk/common"
	"github.com/milk9111/tilewalk/grid"
	"github.com/milk9111/tilewalk/movement"
	"golang.org/x/image/font/basicfont"
)

type overlayKind int

const (
	overlayNone overlayKind = iota
	overlayPause
	overlayDialogue
	overlayMenu
)

type menuItem struct {
	label string
	do    func()
}

func (g *Game) openOverlay(kind overlayKind, reason movement.CancelReason, ui *ebitenui.UI) {
	g.world.Interrupt(reason)
	g.overlay = kind
	g.ui = ui
}

func (g *Game) closeOverlay() {
	g.overlay = overlayNone
	g.ui = nil
}

func (g *Game) openPause() {
	g.openOverlay(overlayPause, movement.CancelOverlay, newPanelUI("Paused", "", common.BaseWidth/2, common.BaseHeight/2,
		menuItem{"Resume", g.closeOverlay},
		menuItem{"Next level", func() {
			g.closeOverlay()
			if err := g.world.SwitchLevel(1); err == nil {
				g.setStatus("level " + g.world.LevelName())
			}
		}},
		menuItem{"Quit", func() { os.Exit(0) }},
	))
}

func (g *Game) openDialogue(n grid.NPC) {
	title := n.ID
	body := "..."
	if k, ok := g.world.NPCKind(n.ID); ok {
		title = fmt.Sprintf("%s the %s", n.ID, k.Name)
		if k.Greeting != "" {
			body = k.Greeting
		}
	}
	g.openOverlay(overlayDialogue, movement.CancelDialogue, newPanelUI(title, body, common.BaseWidth/2, common.BaseHeight/4,
		menuItem{"Goodbye", g.closeOverlay},
	))
}

// openContextMenu offers the actions for the clicked spot.
func (g *Game) openContextMenu(at grid.Position) {
	items := []menuItem{}
	if n, ok := g.world.Roster().NPCAt(at); ok {
		items = append(items, menuItem{"Talk to " + n.ID, func() {
			g.closeOverlay()
			_ = g.world.ClickAt(n.Position)
		}})
	}
	items = append(items,
		menuItem{"Walk here", func() {
			g.closeOverlay()
			_ = g.world.ClickAt(at)
		}},
		menuItem{"Copy path", func() {
			g.closeOverlay()
			g.copyPath()
		}},
		menuItem{"Cancel", g.closeOverlay},
	)
	g.openOverlay(overlayMenu, movement.CancelContextMenu, newPanelUI(at.Tile().String(), "", common.BaseWidth/4, 0, items...))
}

// newPanelUI builds a centered panel with a title, optional body text and one
// button per item. Buttons use colored nine-slices and the built-in basic
// font, so no theme assets are needed.
func newPanelUI(title, body string, minW, minH int, items ...menuItem) *ebitenui.UI {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 200})
	btnImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255})
	hoverImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x55, G: 0x55, B: 0x55, A: 255})

	goFace := ebtext.NewGoXFace(basicfont.Face7x13)
	var face ebtext.Face = goFace

	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	btnTextColor := &widget.ButtonTextColor{Idle: white}
	center := widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(10),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 20, Bottom: 20, Left: 30, Right: 30}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(minW, minH),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionCenter, VerticalPosition: widget.AnchorLayoutPositionCenter}),
		),
	)

	panel.AddChild(widget.NewText(
		widget.TextOpts.Text(title, &face, white),
		widget.TextOpts.WidgetOpts(center),
	))
	if body != "" {
		panel.AddChild(widget.NewText(
			widget.TextOpts.Text(body, &face, color.NRGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}),
			widget.TextOpts.WidgetOpts(center),
		))
	}
	for _, it := range items {
		do := it.do
		panel.AddChild(widget.NewButton(
			widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Hover: hoverImg, Pressed: btnImg}),
			widget.ButtonOpts.Text(it.label, &face, btnTextColor),
			widget.ButtonOpts.WidgetOpts(center),
			widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
				do()
			}),
		))
	}

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	root.AddChild(panel)

	return &ebitenui.UI{Container: root}
}
