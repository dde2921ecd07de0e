package asset

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"

	"github.com/zeusync/trackrun/internal/core/scene"
)

var ErrInvalidModel = errors.New("invalid model")

// gltfDocument is the subset of the glTF 2.0 JSON layout the loader reads:
// the node hierarchy of the default scene and animation names. Meshes and
// buffers are the renderer's business.
type gltfDocument struct {
	Asset struct {
		Version string `json:"version"`
	} `json:"asset"`
	Scene  *int `json:"scene"`
	Scenes []struct {
		Name  string `json:"name"`
		Nodes []int  `json:"nodes"`
	} `json:"scenes"`
	Nodes []struct {
		Name        string    `json:"name"`
		Children    []int     `json:"children"`
		Translation []float64 `json:"translation"`
		Scale       []float64 `json:"scale"`
		Rotation    []float64 `json:"rotation"`
	} `json:"nodes"`
	Animations []struct {
		Name string `json:"name"`
	} `json:"animations"`
}

// Node is one entry of the loaded hierarchy, in depth-first order.
type Node struct {
	Name        string
	Depth       int
	Translation scene.Vec3
	Scale       scene.Vec3
}

// Model is the scene-graph fragment produced by a load.
type Model struct {
	Root  *scene.Object
	Nodes []Node
	Clips []string
}

func decodeGLTF(name string, raw []byte) (Model, error) {
	var doc gltfDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Model{}, errors.Wrap(ErrInvalidModel, err.Error())
	}
	if doc.Asset.Version == "" {
		return Model{}, errors.Wrap(ErrInvalidModel, "missing asset.version")
	}

	sceneIdx := 0
	if doc.Scene != nil {
		sceneIdx = *doc.Scene
	}
	var roots []int
	if sceneIdx >= 0 && sceneIdx < len(doc.Scenes) {
		roots = doc.Scenes[sceneIdx].Nodes
	} else if len(doc.Scenes) > 0 {
		return Model{}, errors.Wrapf(ErrInvalidModel, "scene index %d out of range", sceneIdx)
	}

	var nodes []Node
	visited := make(map[int]bool)
	var walk func(idx, depth int) error
	walk = func(idx, depth int) error {
		if idx < 0 || idx >= len(doc.Nodes) {
			return errors.Wrapf(ErrInvalidModel, "node index %d out of range", idx)
		}
		if visited[idx] {
			return errors.Wrapf(ErrInvalidModel, "node %d appears twice in the hierarchy", idx)
		}
		visited[idx] = true
		n := doc.Nodes[idx]
		nodes = append(nodes, Node{
			Name:        n.Name,
			Depth:       depth,
			Translation: vecOr(n.Translation, scene.Vec3{}),
			Scale:       vecOr(n.Scale, scene.V(1, 1, 1)),
		})
		for _, c := range n.Children {
			if err := walk(c, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range roots {
		if err := walk(r, 0); err != nil {
			return Model{}, err
		}
	}

	root := scene.NewObject(scene.KindDecoration, name)
	if len(nodes) > 0 && len(roots) == 1 {
		if nodes[0].Name != "" {
			root.Name = nodes[0].Name
		}
		root.Position = nodes[0].Translation
		root.Scale = nodes[0].Scale
	}

	clips := make([]string, 0, len(doc.Animations))
	for i, a := range doc.Animations {
		if a.Name == "" {
			a.Name = "animation_" + strconv.Itoa(i)
		}
		clips = append(clips, a.Name)
	}

	return Model{Root: root, Nodes: nodes, Clips: clips}, nil
}

func vecOr(v []float64, def scene.Vec3) scene.Vec3 {
	if len(v) != 3 {
		return def
	}
	out := scene.V(v[0], v[1], v[2])
	if !out.IsFinite() {
		return def
	}
	return out
}
