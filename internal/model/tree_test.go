package model

import (
	"reflect"
	"testing"
)

func uintPtr(v uint64) *uint64 {
	return &v
}

func TestPathHelpers(t *testing.T) {
	if got := RootPath(7); got != "/7/" {
		t.Fatalf("RootPath(7) = %q", got)
	}
	if got := ChildPath("/1/2/", 3); got != "/1/2/3/" {
		t.Fatalf("ChildPath() = %q", got)
	}
	if got := PathIDs("/1/2/3/"); !reflect.DeepEqual(got, []uint64{1, 2, 3}) {
		t.Fatalf("PathIDs() = %v", got)
	}
	if got := PathIDs("/"); got != nil {
		t.Fatalf("PathIDs(\"/\") = %v, want nil", got)
	}
	// 非法段应被跳过而不是导致整体失败
	if got := PathIDs("/1/x/3/"); !reflect.DeepEqual(got, []uint64{1, 3}) {
		t.Fatalf("PathIDs() with dirty segment = %v", got)
	}
	if got := PathDepth("/1/2/3/"); got != 3 {
		t.Fatalf("PathDepth() = %d", got)
	}
}

func TestPathContainsID_MatchesWholeSegment(t *testing.T) {
	if !PathContainsID("/1/12/3/", 12) {
		t.Fatalf("expect /1/12/3/ to contain 12")
	}
	// /123/ 不能被 12 命中
	if PathContainsID("/1/123/", 12) {
		t.Fatalf("expect /1/123/ not to contain 12")
	}
}

// TestBuildForest_NestsByParentID 验证两遍组装：
// 1. 正常父子关系挂到 Children。
// 2. 父节点不在结果集中的节点作为根返回（子树查询、孤儿都靠这条兜底）。
func TestBuildForest_NestsByParentID(t *testing.T) {
	rows := []*Dept{
		{TreeFields: TreeFields{ID: 1, Path: "/1/", Level: 1}, Name: "HQ"},
		{TreeFields: TreeFields{ID: 2, ParentID: uintPtr(1), Path: "/1/2/", Level: 2}, Name: "Tech"},
		{TreeFields: TreeFields{ID: 3, ParentID: uintPtr(2), Path: "/1/2/3/", Level: 3}, Name: "Backend"},
		{TreeFields: TreeFields{ID: 9, ParentID: uintPtr(404), Path: "/404/9/", Level: 2}, Name: "Orphan"},
	}

	forest := BuildForest(rows)
	if len(forest) != 2 {
		t.Fatalf("expect 2 roots (HQ + orphan), got %d", len(forest))
	}
	hq := forest[0]
	if hq.ID != 1 || len(hq.Children) != 1 {
		t.Fatalf("unexpected HQ node: %+v", hq)
	}
	if hq.Children[0].ID != 2 || len(hq.Children[0].Children) != 1 {
		t.Fatalf("unexpected Tech subtree: %+v", hq.Children[0])
	}
	if hq.Children[0].Children[0].ID != 3 {
		t.Fatalf("unexpected Backend node: %+v", hq.Children[0].Children[0])
	}
	if forest[1].ID != 9 {
		t.Fatalf("orphan should be kept as root, got %+v", forest[1])
	}
}

// 展平回 parent/child 对时应还原原始关系。
func TestBuildForest_RoundTrip(t *testing.T) {
	rows := []*Dept{
		{TreeFields: TreeFields{ID: 1, Path: "/1/", Level: 1}},
		{TreeFields: TreeFields{ID: 2, ParentID: uintPtr(1), Path: "/1/2/", Level: 2}},
		{TreeFields: TreeFields{ID: 3, ParentID: uintPtr(1), Path: "/1/3/", Level: 2}},
	}
	forest := BuildForest(rows)

	pairs := map[uint64]uint64{}
	var walk func(n *Dept)
	walk = func(n *Dept) {
		for _, c := range n.Children {
			pairs[c.ID] = n.ID
			walk(c)
		}
	}
	for _, root := range forest {
		walk(root)
	}

	want := map[uint64]uint64{2: 1, 3: 1}
	if !reflect.DeepEqual(pairs, want) {
		t.Fatalf("flattened pairs = %v, want %v", pairs, want)
	}
}
