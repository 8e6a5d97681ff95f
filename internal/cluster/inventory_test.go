package cluster

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic/fake"
	k8stesting "k8s.io/client-go/testing"
)

func imageStream(namespace, name string, tags ...map[string]interface{}) *unstructured.Unstructured {
	tagList := make([]interface{}, 0, len(tags))
	for _, tag := range tags {
		tagList = append(tagList, tag)
	}
	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "image.openshift.io/v1",
		"kind":       "ImageStream",
		"metadata": map[string]interface{}{
			"name":      name,
			"namespace": namespace,
		},
		"status": map[string]interface{}{
			"tags": tagList,
		},
	}}
}

func tagEntry(name, created string) map[string]interface{} {
	entry := map[string]interface{}{"tag": name}
	if created != "" {
		entry["items"] = []interface{}{
			map[string]interface{}{"created": created},
		}
	}
	return entry
}

func newFakeInventory(t *testing.T, objects ...runtime.Object) (*Inventory, *fake.FakeDynamicClient) {
	t.Helper()
	scheme := runtime.NewScheme()
	client := fake.NewSimpleDynamicClientWithCustomListKinds(scheme,
		map[schema.GroupVersionResource]string{imageStreamResource: "ImageStreamList"},
		objects...)
	return NewInventory(client, zap.NewNop()), client
}

func TestInventory_Images(t *testing.T) {
	t.Run("lists streams with parsed tags", func(t *testing.T) {
		inv, _ := newFakeInventory(t,
			imageStream("team-a", "web",
				tagEntry("v1", "2024-01-01T00:00:00Z"),
				tagEntry("v2", "2024-02-01T00:00:00Z")),
			imageStream("team-a", "api",
				tagEntry("latest", "")),
		)

		images, err := inv.Images(context.Background(), "team-a")
		if err != nil {
			t.Fatalf("Images failed: %v", err)
		}
		if len(images) != 2 {
			t.Fatalf("listed %d images, want 2", len(images))
		}
		// Sorted by name.
		if images[0].Name != "api" || images[1].Name != "web" {
			t.Errorf("order = [%s %s], want [api web]", images[0].Name, images[1].Name)
		}

		web := images[1]
		if len(web.Tags) != 2 {
			t.Fatalf("web has %d tags, want 2", len(web.Tags))
		}
		want := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
		if !web.Tags[1].Created.Equal(want) {
			t.Errorf("v2 created = %v, want %v", web.Tags[1].Created, want)
		}

		api := images[0]
		if len(api.Tags) != 1 || api.Tags[0].Name != "latest" {
			t.Fatalf("api tags = %v, want [latest]", api.Tags)
		}
		if !api.Tags[0].Created.IsZero() {
			t.Errorf("tag without events should keep a zero creation time, got %v", api.Tags[0].Created)
		}
	})

	t.Run("empty namespace yields no images", func(t *testing.T) {
		inv, _ := newFakeInventory(t)
		images, err := inv.Images(context.Background(), "empty-ns")
		if err != nil {
			t.Fatalf("Images failed: %v", err)
		}
		if len(images) != 0 {
			t.Errorf("listed %d images in an empty namespace, want 0", len(images))
		}
	})

	t.Run("namespaces are isolated", func(t *testing.T) {
		inv, _ := newFakeInventory(t,
			imageStream("team-a", "web", tagEntry("v1", "2024-01-01T00:00:00Z")),
			imageStream("team-b", "db", tagEntry("v1", "2024-01-01T00:00:00Z")),
		)
		images, err := inv.Images(context.Background(), "team-b")
		if err != nil {
			t.Fatalf("Images failed: %v", err)
		}
		if len(images) != 1 || images[0].Name != "db" {
			t.Errorf("images = %v, want just db", images)
		}
	})

	t.Run("stream without status tags", func(t *testing.T) {
		inv, _ := newFakeInventory(t, imageStream("team-a", "bare"))
		images, err := inv.Images(context.Background(), "team-a")
		if err != nil {
			t.Fatalf("Images failed: %v", err)
		}
		if len(images) != 1 || len(images[0].Tags) != 0 {
			t.Errorf("images = %v, want one image with no tags", images)
		}
	})

	t.Run("list failure is a cluster error", func(t *testing.T) {
		inv, client := newFakeInventory(t)
		client.PrependReactor("list", "imagestreams", func(k8stesting.Action) (bool, runtime.Object, error) {
			return true, nil, errors.New("imagestreams is forbidden")
		})

		_, err := inv.Images(context.Background(), "team-a")
		if !errors.Is(err, ErrListImageStreams) {
			t.Errorf("Images error = %v, want ErrListImageStreams", err)
		}
	})
}
