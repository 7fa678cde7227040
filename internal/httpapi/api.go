package httpapi

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"parcelmap/internal/mapview"
)

// Types

type ScaleBody struct {
	Meters float64 `json:"meters" doc:"Ground distance of the whole bar"`
	Width  float64 `json:"width" doc:"Bar width in pixels"`
	Steps  int     `json:"steps" doc:"Bar segments"`
	Label  string  `json:"label" example:"500 m"`
	Bar    bool    `json:"bar" doc:"Whether the segmented bar is shown"`
	Text   bool    `json:"text" doc:"Whether the distance label is shown"`
}

type MeasureBody struct {
	Mode   string  `json:"mode" enum:"off,length,area"`
	Points int     `json:"points"`
	Value  float64 `json:"value" doc:"Metres or square metres"`
	Label  string  `json:"label" example:"1.2 km"`
}

type ViewBody struct {
	Center       [2]float64  `json:"center" doc:"View center lon/lat" example:"[34.75,0.28]"`
	Zoom         float64     `json:"zoom" example:"12"`
	Resolution   float64     `json:"resolution" doc:"Metres per pixel"`
	Width        int         `json:"width" doc:"Viewport width in pixels"`
	Height       int         `json:"height" doc:"Viewport height in pixels"`
	Extent       [4]float64  `json:"extent" doc:"minLon, minLat, maxLon, maxLat"`
	Fullscreen   bool        `json:"fullscreen"`
	Scale        ScaleBody   `json:"scale"`
	TransitionMs int64       `json:"transitionMs" doc:"Animation length of the last view change"`
	Measure      MeasureBody `json:"measure"`
}

type ControlBody struct {
	ID    string   `json:"id" example:"zoom-in"`
	Label string   `json:"label"`
	Tip   string   `json:"tip"`
	Keys  []string `json:"keys"`
}

type AttrBody struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type PopupBody struct {
	Visible    bool        `json:"visible"`
	Position   *[2]float64 `json:"position,omitempty" doc:"Anchor lon/lat; absent when hidden"`
	Layer      string      `json:"layer,omitempty"`
	Feature    string      `json:"feature,omitempty"`
	Attributes []AttrBody  `json:"attributes"`
	Text       string      `json:"text" doc:"name: value lines"`
}

type TileBody struct {
	Z uint32 `json:"z"`
	X uint32 `json:"x"`
	Y uint32 `json:"y"`
}

type PointerBody struct {
	Inside     bool        `json:"inside" doc:"Whether the pixel lies on the canvas"`
	Coordinate string      `json:"coordinate" doc:"Formatted lon, lat readout" example:"34.750000, 0.280000"`
	LonLat     *[2]float64 `json:"lonlat,omitempty"`
	Tile       *TileBody   `json:"tile,omitempty"`
}

type LayerBody struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Group       string   `json:"group,omitempty"`
	Kind        string   `json:"kind" enum:"osm,xyz,wms,vector"`
	Visible     bool     `json:"visible"`
	ZIndex      int      `json:"zIndex"`
	Interactive bool     `json:"interactive" doc:"Whether clicks hit-test this layer"`
	Source      string   `json:"source"`
	Features    int      `json:"features"`
	Attribution []string `json:"attributions,omitempty"`
}

type PixelBody struct {
	X float64 `json:"x" doc:"Pixel column from the left edge"`
	Y float64 `json:"y" doc:"Pixel row from the top edge"`
}

type ResizeBody struct {
	Width  int `json:"width" minimum:"0"`
	Height int `json:"height" minimum:"0"`
}

type VisibleBody struct {
	Visible bool `json:"visible"`
}

type SearchBody struct {
	Query string `json:"query" minLength:"1" example:"old town"`
}

type ViewOutput struct{ Body ViewBody }

type PopupOutput struct{ Body PopupBody }

type PointerInput struct {
	X float64 `query:"x" required:"true" doc:"Pixel column"`
	Y float64 `query:"y" required:"true" doc:"Pixel row"`
}

type ControlIDInput struct {
	ID string `path:"id" doc:"Control ID" example:"measure-length"`
}

type LayerIDInput struct {
	ID string `path:"id" doc:"Layer ID" example:"core_urban"`
}

func (s *Server) register(api huma.API) {
	huma.Get(api, "/api/v1/view", s.GetView, huma.OperationTags("view"))
	huma.Post(api, "/api/v1/view/home", s.Home, huma.OperationTags("view"))
	huma.Post(api, "/api/v1/view/zoom-in", s.ZoomIn, huma.OperationTags("view"))
	huma.Post(api, "/api/v1/view/zoom-out", s.ZoomOut, huma.OperationTags("view"))
	huma.Post(api, "/api/v1/view/resize", s.Resize, huma.OperationTags("view"))

	huma.Get(api, "/api/v1/controls", s.GetControls, huma.OperationTags("controls"))
	huma.Post(api, "/api/v1/controls/{id}", s.TriggerControl, huma.OperationTags("controls"))

	huma.Post(api, "/api/v1/click", s.Click, huma.OperationTags("popup"))
	huma.Get(api, "/api/v1/popup", s.GetPopup, huma.OperationTags("popup"))
	huma.Get(api, "/api/v1/pointer", s.GetPointer, huma.OperationTags("view"))

	huma.Get(api, "/api/v1/layers", s.GetLayers, huma.OperationTags("layers"))
	huma.Put(api, "/api/v1/layers/{id}/visible", s.PutLayerVisible, huma.OperationTags("layers"))

	huma.Post(api, "/api/v1/search", s.Search, huma.OperationTags("popup"))
}

// Handlers

func (s *Server) GetView(ctx context.Context, input *struct{}) (*ViewOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &ViewOutput{Body: s.viewBody()}, nil
}

func (s *Server) Home(ctx context.Context, input *struct{}) (*ViewOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctl.Home()
	return &ViewOutput{Body: s.viewBody()}, nil
}

func (s *Server) ZoomIn(ctx context.Context, input *struct{}) (*ViewOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctl.ZoomIn()
	return &ViewOutput{Body: s.viewBody()}, nil
}

func (s *Server) ZoomOut(ctx context.Context, input *struct{}) (*ViewOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctl.ZoomOut()
	return &ViewOutput{Body: s.viewBody()}, nil
}

func (s *Server) Resize(ctx context.Context, input *struct{ Body ResizeBody }) (*ViewOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctl.Resize(input.Body.Width, input.Body.Height)
	return &ViewOutput{Body: s.viewBody()}, nil
}

func (s *Server) GetControls(ctx context.Context, input *struct{}) (*struct{ Body []ControlBody }, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ControlBody
	for _, ct := range s.ctl.Controls() {
		out = append(out, ControlBody{ID: ct.ID, Label: ct.Label, Tip: ct.Tip, Keys: ct.Keys})
	}
	return &struct{ Body []ControlBody }{Body: out}, nil
}

func (s *Server) TriggerControl(ctx context.Context, input *ControlIDInput) (*ViewOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ctl.Trigger(input.ID) {
		return nil, huma.Error404NotFound("control not found")
	}
	return &ViewOutput{Body: s.viewBody()}, nil
}

// Click adds a measure point while a measure tool is active, and
// hit-tests for the popup otherwise.
func (s *Server) Click(ctx context.Context, input *struct{ Body PixelBody }) (*PopupOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := mapview.Pixel{X: input.Body.X, Y: input.Body.Y}
	if s.ctl.Measure().Active() {
		s.ctl.MeasureAt(p)
	} else {
		s.ctl.Click(p)
	}
	return &PopupOutput{Body: s.popupBody()}, nil
}

func (s *Server) GetPopup(ctx context.Context, input *struct{}) (*PopupOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &PopupOutput{Body: s.popupBody()}, nil
}

func (s *Server) GetPointer(ctx context.Context, input *PointerInput) (*struct{ Body PointerBody }, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := mapview.Pixel{X: input.X, Y: input.Y}
	out := PointerBody{Coordinate: s.ctl.Pointer(p)}
	if ll, ok := s.ctl.PointerLonLat(p); ok {
		out.Inside = true
		out.LonLat = &[2]float64{ll[0], ll[1]}
	}
	if t, ok := s.ctl.TileAt(p); ok {
		out.Tile = &TileBody{Z: uint32(t.Z), X: t.X, Y: t.Y}
	}
	return &struct{ Body PointerBody }{Body: out}, nil
}

func (s *Server) GetLayers(ctx context.Context, input *struct{}) (*struct{ Body []LayerBody }, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	layers := s.ctl.Layers()
	out := make([]LayerBody, 0, len(layers))
	for _, l := range layers {
		out = append(out, layerBody(l))
	}
	return &struct{ Body []LayerBody }{Body: out}, nil
}

func (s *Server) PutLayerVisible(ctx context.Context, input *struct {
	LayerIDInput
	Body VisibleBody
}) (*struct{ Body LayerBody }, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ctl.SetLayerVisible(input.ID, input.Body.Visible); err != nil {
		return nil, huma.Error404NotFound("layer not found")
	}
	l, _ := s.ctl.Layer(input.ID)
	return &struct{ Body LayerBody }{Body: layerBody(l)}, nil
}

func (s *Server) Search(ctx context.Context, input *struct{ Body SearchBody }) (*PopupOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ctl.Search(input.Body.Query); !ok {
		return nil, huma.Error404NotFound("no feature matches " + input.Body.Query)
	}
	return &PopupOutput{Body: s.popupBody()}, nil
}

// Mapping

func (s *Server) viewBody() ViewBody {
	v := s.ctl.View()
	vp := s.ctl.Viewport()
	ll := v.LonLat()
	ext := s.ctl.Frame().Extent()
	lo, hi := mapview.ToLonLat(ext.Min), mapview.ToLonLat(ext.Max)
	sc := s.ctl.ScaleLine()
	ms := s.ctl.Measure()
	return ViewBody{
		Center:     [2]float64{ll[0], ll[1]},
		Zoom:       v.Zoom,
		Resolution: v.Resolution(),
		Width:      vp.Width,
		Height:     vp.Height,
		Extent:     [4]float64{lo[0], lo[1], hi[0], hi[1]},
		Fullscreen: s.ctl.Fullscreen(),
		Scale: ScaleBody{
			Meters: sc.Meters,
			Width:  sc.Width,
			Steps:  sc.Steps,
			Label:  sc.Label,
			Bar:    sc.Bar,
			Text:   sc.Text,
		},
		TransitionMs: s.ctl.Transition().Duration.Milliseconds(),
		Measure: MeasureBody{
			Mode:   ms.Mode.String(),
			Points: len(ms.Points),
			Value:  ms.Value(),
			Label:  ms.Format(),
		},
	}
}

func (s *Server) popupBody() PopupBody {
	p := s.ctl.Popup()
	out := PopupBody{Text: p.Text(), Attributes: []AttrBody{}}
	pos, ok := p.Position()
	if !ok {
		return out
	}
	ll := mapview.ToLonLat(pos)
	out.Visible = true
	out.Position = &[2]float64{ll[0], ll[1]}
	out.Layer, out.Feature = p.Feature()
	for _, a := range p.Attrs() {
		out.Attributes = append(out.Attributes, AttrBody{Name: a.Name, Value: a.Value})
	}
	return out
}

func layerBody(l *mapview.Layer) LayerBody {
	return LayerBody{
		ID:          l.ID,
		Title:       l.Title,
		Group:       l.Group,
		Kind:        string(l.Kind),
		Visible:     l.Visible,
		ZIndex:      l.ZIndex,
		Interactive: l.Interactive(),
		Source:      l.Source(),
		Features:    len(l.Features()),
		Attribution: l.Attributions,
	}
}
