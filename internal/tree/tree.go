// Package tree organizes conversations into a persistent folder hierarchy.
// The structure lives in a sidecar organization file next to the source
// data, so the original export or session directory is never touched.
package tree

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/aicb-dev/aicb/internal/parse"
)

var (
	// ErrNodeNotFound reports an operation on an id the tree does not hold.
	ErrNodeNotFound = errors.New("tree: node not found")
	// ErrWouldCycle reports a move that would make a folder its own ancestor.
	ErrWouldCycle = errors.New("tree: move would create a cycle")
)

// Node is a folder or a conversation reference. Conversation nodes carry
// only the id and a display name; the conversation content stays with its
// loader.
type Node struct {
	ID       string
	Name     string
	IsFolder bool
	ParentID string
	Children map[string]bool
	Expanded bool
}

// Item is one row of a rendered tree: the node, the conversation it refers
// to (nil for folders), and its indentation depth.
type Item struct {
	Node         *Node
	Conversation *parse.Conversation
	Depth        int
}

// Tree is the folder hierarchy for one conversation source. It is not safe
// for concurrent use; the CLI owns exactly one per invocation.
type Tree struct {
	orgPath     string
	nodes       map[string]*Node
	rootNodes   map[string]bool
	metadata    map[string]map[string]string
	customOrder map[string][]string
}

// rootKey is the custom-order key for top-level siblings, which have no
// parent id of their own.
const rootKey = "root"

// OrgPath derives the sidecar organization file for a conversation source:
// export.json gets export_organization.json beside it, session .jsonl files
// likewise, and a project directory holds its file inside itself.
func OrgPath(sourcePath string) string {
	switch {
	case strings.HasSuffix(sourcePath, ".json"):
		return strings.TrimSuffix(sourcePath, ".json") + "_organization.json"
	case strings.HasSuffix(sourcePath, ".jsonl"):
		return strings.TrimSuffix(sourcePath, ".jsonl") + "_organization.json"
	}
	if info, err := os.Stat(sourcePath); err == nil && info.IsDir() {
		return filepath.Join(sourcePath, "_organization.json")
	}
	return sourcePath + "_organization.json"
}

// Load opens the tree for a conversation source. A missing or corrupt
// organization file yields an empty tree rather than an error: the sidecar
// is a convenience layer and must never block access to the data itself.
func Load(sourcePath string) *Tree {
	t := &Tree{
		orgPath:     OrgPath(sourcePath),
		nodes:       make(map[string]*Node),
		rootNodes:   make(map[string]bool),
		metadata:    make(map[string]map[string]string),
		customOrder: make(map[string][]string),
	}
	t.load()
	return t
}

type nodeJSON struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	IsFolder bool     `json:"is_folder"`
	ParentID string   `json:"parent_id,omitempty"`
	Children []string `json:"children"`
	Expanded bool     `json:"expanded"`
}

type treeJSON struct {
	Nodes       []nodeJSON                   `json:"nodes"`
	RootNodes   []string                     `json:"root_nodes"`
	Metadata    map[string]map[string]string `json:"metadata"`
	CustomOrder map[string][]string          `json:"custom_order"`
}

func (t *Tree) load() {
	data, err := os.ReadFile(t.orgPath)
	if err != nil {
		return
	}
	var doc treeJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return
	}

	for _, n := range doc.Nodes {
		node := &Node{
			ID:       n.ID,
			Name:     n.Name,
			IsFolder: n.IsFolder,
			ParentID: n.ParentID,
			Children: make(map[string]bool, len(n.Children)),
			Expanded: n.Expanded,
		}
		for _, c := range n.Children {
			node.Children[c] = true
		}
		t.nodes[node.ID] = node
	}
	for _, id := range doc.RootNodes {
		t.rootNodes[id] = true
	}
	if doc.Metadata != nil {
		t.metadata = doc.Metadata
	}
	if doc.CustomOrder != nil {
		t.customOrder = doc.CustomOrder
	}

	t.repair()
}

// repair drops references to nodes that no longer exist and reattaches
// orphans to the root, so a hand-edited or partially written organization
// file still yields a usable tree.
func (t *Tree) repair() {
	for id := range t.rootNodes {
		if _, ok := t.nodes[id]; !ok {
			delete(t.rootNodes, id)
		}
	}
	for _, node := range t.nodes {
		for child := range node.Children {
			if _, ok := t.nodes[child]; !ok {
				delete(node.Children, child)
			}
		}
	}
	for _, node := range t.nodes {
		if node.ParentID != "" {
			if _, ok := t.nodes[node.ParentID]; !ok {
				node.ParentID = ""
				t.rootNodes[node.ID] = true
			}
		}
	}
}

// Save writes the organization file atomically: the document lands in a
// temp file in the same directory first, then renames over the target.
func (t *Tree) Save() error {
	doc := treeJSON{
		Nodes:       make([]nodeJSON, 0, len(t.nodes)),
		RootNodes:   sortedKeys(t.rootNodes),
		Metadata:    t.metadata,
		CustomOrder: t.customOrder,
	}
	for _, id := range sortedNodeIDs(t.nodes) {
		node := t.nodes[id]
		doc.Nodes = append(doc.Nodes, nodeJSON{
			ID:       node.ID,
			Name:     node.Name,
			IsFolder: node.IsFolder,
			ParentID: node.ParentID,
			Children: sortedKeys(node.Children),
			Expanded: node.Expanded,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal organization: %w", err)
	}

	tmp := t.orgPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write organization: %w", err)
	}
	if err := os.Rename(tmp, t.orgPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace organization: %w", err)
	}
	return nil
}

// CreateFolder adds a folder under parentID ("" for root) and returns its
// generated id.
func (t *Tree) CreateFolder(name, parentID string) string {
	id := uuid.NewString()
	node := &Node{
		ID:       id,
		Name:     name,
		IsFolder: true,
		ParentID: parentID,
		Children: make(map[string]bool),
		Expanded: true,
	}
	t.nodes[id] = node

	if parent, ok := t.nodes[parentID]; parentID != "" && ok {
		parent.Children[id] = true
	} else {
		node.ParentID = ""
		t.rootNodes[id] = true
	}
	return id
}

// AddConversation registers a conversation node. Adding an id already in
// the tree is a no-op, so repeated loads never duplicate or move nodes.
func (t *Tree) AddConversation(convID, title, parentID string) {
	if _, ok := t.nodes[convID]; ok {
		return
	}
	node := &Node{
		ID:       convID,
		Name:     title,
		IsFolder: false,
		ParentID: parentID,
		Children: make(map[string]bool),
		Expanded: true,
	}
	t.nodes[convID] = node

	if parent, ok := t.nodes[parentID]; parentID != "" && ok {
		parent.Children[convID] = true
	} else {
		node.ParentID = ""
		t.rootNodes[convID] = true
	}
}

// MoveNode reparents a node. Moving a node under itself or any of its
// descendants is rejected with ErrWouldCycle and leaves the tree unchanged.
func (t *Tree) MoveNode(nodeID, newParentID string) error {
	node, ok := t.nodes[nodeID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	if newParentID != "" {
		if _, ok := t.nodes[newParentID]; !ok {
			return fmt.Errorf("%w: %s", ErrNodeNotFound, newParentID)
		}
		for cur := newParentID; cur != ""; cur = t.nodes[cur].ParentID {
			if cur == nodeID {
				return fmt.Errorf("%w: %s under %s", ErrWouldCycle, nodeID, newParentID)
			}
		}
	}

	if parent, ok := t.nodes[node.ParentID]; node.ParentID != "" && ok {
		delete(parent.Children, nodeID)
	} else {
		delete(t.rootNodes, nodeID)
	}

	node.ParentID = newParentID
	if parent, ok := t.nodes[newParentID]; newParentID != "" && ok {
		parent.Children[nodeID] = true
	} else {
		t.rootNodes[nodeID] = true
	}
	return nil
}

// DeleteNode removes a node and its whole subtree. Unknown ids are a no-op.
// Deleting a conversation node only removes it from the organization; the
// underlying session data is untouched.
func (t *Tree) DeleteNode(nodeID string) {
	if _, ok := t.nodes[nodeID]; !ok {
		return
	}

	toDelete := []string{nodeID}
	for i := 0; i < len(toDelete); i++ {
		if node, ok := t.nodes[toDelete[i]]; ok {
			for child := range node.Children {
				toDelete = append(toDelete, child)
			}
		}
	}

	for _, id := range toDelete {
		node, ok := t.nodes[id]
		if !ok {
			continue
		}
		if parent, ok := t.nodes[node.ParentID]; node.ParentID != "" && ok {
			delete(parent.Children, id)
		} else {
			delete(t.rootNodes, id)
		}
		delete(t.nodes, id)
		delete(t.metadata, id)
	}
}

// RenameNode changes a node's display name. Unknown ids are a no-op.
func (t *Tree) RenameNode(nodeID, newName string) {
	if node, ok := t.nodes[nodeID]; ok {
		node.Name = newName
	}
}

// ToggleFolder flips a folder's expansion state.
func (t *Tree) ToggleFolder(nodeID string) {
	if node, ok := t.nodes[nodeID]; ok && node.IsFolder {
		node.Expanded = !node.Expanded
	}
}

// Node returns the node for id, or nil.
func (t *Tree) Node(id string) *Node {
	return t.nodes[id]
}

// UpdateMetadata merges key/value pairs into a conversation's sidecar
// metadata.
func (t *Tree) UpdateMetadata(convID string, values map[string]string) {
	if t.metadata[convID] == nil {
		t.metadata[convID] = make(map[string]string, len(values))
	}
	for k, v := range values {
		t.metadata[convID][k] = v
	}
}

// Metadata returns the sidecar metadata for a conversation, or nil.
func (t *Tree) Metadata(convID string) map[string]string {
	return t.metadata[convID]
}

// Items renders the visible tree: every folder, and every conversation
// node whose conversation appears in the supplied list. Conversations not
// yet in the tree are auto-registered at the root first, so a fresh source
// shows everything. Children of collapsed folders are skipped.
func (t *Tree) Items(conversations []*parse.Conversation, sortByDate, useCustomOrder bool) []Item {
	convMap := make(map[string]*parse.Conversation, len(conversations))
	for _, c := range conversations {
		convMap[c.ID] = c
		t.AddConversation(c.ID, c.Title, "")
	}

	var items []Item
	visited := make(map[string]bool, len(t.nodes))
	t.buildItems(t.rootNodes, 0, "", convMap, sortByDate, useCustomOrder, visited, &items)
	return items
}

// buildItems walks one child set. The visited set stops the walk from
// looping on a hand-edited organization file whose children references form
// a cycle; repair drops dangling references but not loops.
func (t *Tree) buildItems(ids map[string]bool, depth int, parentID string, convMap map[string]*parse.Conversation, sortByDate, useCustomOrder bool, visited map[string]bool, items *[]Item) {
	for _, id := range t.sortedChildren(ids, parentID, convMap, sortByDate, useCustomOrder) {
		if visited[id] {
			continue
		}
		visited[id] = true
		node := t.nodes[id]
		if node.IsFolder {
			*items = append(*items, Item{Node: node, Depth: depth})
			if node.Expanded {
				t.buildItems(node.Children, depth+1, id, convMap, sortByDate, useCustomOrder, visited, items)
			}
			continue
		}
		if conv, ok := convMap[id]; ok {
			*items = append(*items, Item{Node: node, Conversation: conv, Depth: depth})
		}
	}
}

func (t *Tree) sortedChildren(ids map[string]bool, parentID string, convMap map[string]*parse.Conversation, sortByDate, useCustomOrder bool) []string {
	valid := make([]string, 0, len(ids))
	for id := range ids {
		if _, ok := t.nodes[id]; ok {
			valid = append(valid, id)
		}
	}

	key := parentID
	if key == "" {
		key = rootKey
	}
	if order, ok := t.customOrder[key]; useCustomOrder && ok {
		return applyOrder(valid, order)
	}
	return t.autoSort(valid, convMap, sortByDate)
}

// applyOrder keeps the stored sequence and appends ids the sequence has not
// seen yet, so new arrivals show up instead of vanishing.
func applyOrder(valid, order []string) []string {
	validSet := make(map[string]bool, len(valid))
	for _, id := range valid {
		validSet[id] = true
	}
	ordered := make([]string, 0, len(valid))
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		seen[id] = true
		if validSet[id] {
			ordered = append(ordered, id)
		}
	}
	for _, id := range valid {
		if !seen[id] {
			ordered = append(ordered, id)
		}
	}
	return ordered
}

// autoSort orders folders alphabetically first, then conversations by
// create time (newest first) or alphabetically. Conversation nodes whose
// conversation is absent from convMap are dropped here; they reappear as
// soon as the source provides them again.
func (t *Tree) autoSort(valid []string, convMap map[string]*parse.Conversation, sortByDate bool) []string {
	var folders, convs []string
	for _, id := range valid {
		if t.nodes[id].IsFolder {
			folders = append(folders, id)
		} else if _, ok := convMap[id]; ok {
			convs = append(convs, id)
		}
	}

	sort.SliceStable(folders, func(i, j int) bool {
		return nameLess(t.nodes[folders[i]], t.nodes[folders[j]])
	})
	if sortByDate {
		sort.SliceStable(convs, func(i, j int) bool {
			return convMap[convs[i]].CreateTime.After(convMap[convs[j]].CreateTime)
		})
	} else {
		sort.SliceStable(convs, func(i, j int) bool {
			return nameLess(t.nodes[convs[i]], t.nodes[convs[j]])
		})
	}

	return append(folders, convs...)
}

// MoveItemUp swaps an item with its previous sibling in the custom order,
// seeding the order from the current automatic sort on first use. Returns
// false at the top of the list or for unknown ids.
func (t *Tree) MoveItemUp(itemID string) bool {
	order, idx, ok := t.orderPosition(itemID)
	if !ok || idx == 0 {
		return false
	}
	order[idx], order[idx-1] = order[idx-1], order[idx]
	return true
}

// MoveItemDown swaps an item with its next sibling in the custom order.
// Returns false at the bottom of the list or for unknown ids.
func (t *Tree) MoveItemDown(itemID string) bool {
	order, idx, ok := t.orderPosition(itemID)
	if !ok || idx == len(order)-1 {
		return false
	}
	order[idx], order[idx+1] = order[idx+1], order[idx]
	return true
}

func (t *Tree) orderPosition(itemID string) ([]string, int, bool) {
	node, ok := t.nodes[itemID]
	if !ok {
		return nil, 0, false
	}
	key := node.ParentID
	if key == "" {
		key = rootKey
	}
	t.seedCustomOrder(key, node)

	order := t.customOrder[key]
	for i, id := range order {
		if id == itemID {
			return order, i, true
		}
	}
	order = append(order, itemID)
	t.customOrder[key] = order
	return order, len(order) - 1, true
}

// seedCustomOrder initializes a parent's custom order from a deterministic
// baseline: folders alphabetically, then conversations alphabetically.
func (t *Tree) seedCustomOrder(key string, node *Node) {
	if _, ok := t.customOrder[key]; ok {
		return
	}

	var siblings map[string]bool
	if node.ParentID != "" {
		parent, ok := t.nodes[node.ParentID]
		if !ok {
			return
		}
		siblings = parent.Children
	} else {
		siblings = t.rootNodes
	}

	var folders, convs []string
	for id := range siblings {
		sib, ok := t.nodes[id]
		if !ok {
			continue
		}
		if sib.IsFolder {
			folders = append(folders, id)
		} else {
			convs = append(convs, id)
		}
	}
	sort.SliceStable(folders, func(i, j int) bool {
		return nameLess(t.nodes[folders[i]], t.nodes[folders[j]])
	})
	sort.SliceStable(convs, func(i, j int) bool {
		return nameLess(t.nodes[convs[i]], t.nodes[convs[j]])
	})

	t.customOrder[key] = append(folders, convs...)
}

// ClearCustomOrder discards all manual ordering, restoring automatic sort.
func (t *Tree) ClearCustomOrder() {
	t.customOrder = make(map[string][]string)
}

func nameLess(a, b *Node) bool {
	an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
	if an != bn {
		return an < bn
	}
	return a.ID < b.ID
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedNodeIDs(nodes map[string]*Node) []string {
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
