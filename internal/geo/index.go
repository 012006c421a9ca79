package geo

import (
	"sync"

	"github.com/dhconnelly/rtreego"

	"roadside-assist-service/internal/model"
)

// pointTolerance da a cada taller un rectángulo mínimo dentro del R-tree.
const pointTolerance = 1e-7

type indexedGarage struct {
	garage model.Garage
	coord  model.Coordinate
}

func (g *indexedGarage) Bounds() rtreego.Rect {
	return rtreego.Point{g.coord.Lat, g.coord.Lng}.ToRect(pointTolerance)
}

// Index es un índice espacial en memoria de talleres.
type Index struct {
	mu    sync.RWMutex
	tree  *rtreego.Rtree
	items map[string]*indexedGarage
}

func NewIndex() *Index {
	return &Index{
		tree:  rtreego.NewTree(2, 25, 50),
		items: make(map[string]*indexedGarage),
	}
}

// Upsert reemplaza el taller con el mismo ID si ya existía.
func (ix *Index) Upsert(g model.Garage) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if old, ok := ix.items[g.ID]; ok {
		ix.tree.Delete(old)
	}
	item := &indexedGarage{garage: g.Clone(), coord: g.Location.Coordinate()}
	ix.items[g.ID] = item
	ix.tree.Insert(item)
}

// Reset vacía el índice.
func (ix *Index) Reset() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.tree = rtreego.NewTree(2, 25, 50)
	ix.items = make(map[string]*indexedGarage)
}

func (ix *Index) Get(id string) (model.Garage, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	item, ok := ix.items[id]
	if !ok {
		return model.Garage{}, false
	}
	return item.garage.Clone(), true
}

func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.items)
}

// Nearby filtra por bounding box en el R-tree (dos boxes si cruza el antimeridiano),
// después por haversine, y ordena por distancia creciente. limit <= 0 significa sin límite.
func (ix *Index) Nearby(center model.Coordinate, radiusKm float64, limit int) []model.Garage {
	ix.mu.RLock()
	var candidates []model.Garage
	for _, box := range SearchBoxes(center, radiusKm) {
		rect, err := rtreego.NewRectFromPoints(
			rtreego.Point{box.MinLat, box.MinLng},
			rtreego.Point{box.MaxLat, box.MaxLng},
		)
		if err != nil {
			continue
		}
		for _, c := range ix.tree.SearchIntersect(rect) {
			candidates = append(candidates, c.(*indexedGarage).garage)
		}
	}
	ix.mu.RUnlock()

	out := Rank(center, candidates, radiusKm, limit)
	for i := range out {
		out[i] = out[i].Clone()
	}
	return out
}
