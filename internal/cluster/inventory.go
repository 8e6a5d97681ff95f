package cluster

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"

	"ismigrate/internal/migrate"
)

var imageStreamResource = schema.GroupVersionResource{
	Group:    "image.openshift.io",
	Version:  "v1",
	Resource: "imagestreams",
}

// Inventory reads the image stream catalog of source namespaces.
type Inventory struct {
	client dynamic.Interface
	logger *zap.Logger
}

// NewInventory returns an inventory reader over an existing dynamic client.
func NewInventory(client dynamic.Interface, logger *zap.Logger) *Inventory {
	return &Inventory{client: client, logger: logger}
}

// NewInventoryForCluster builds a dynamic client from the API URL and bearer
// token and returns an inventory reader over it.
func NewInventoryForCluster(apiURL, token string, insecure bool, logger *zap.Logger) (*Inventory, error) {
	cfg := &rest.Config{
		Host:        apiURL,
		BearerToken: token,
	}
	if insecure {
		cfg.TLSClientConfig = rest.TLSClientConfig{Insecure: true}
	}
	client, err := dynamic.NewForConfig(cfg)
	if err != nil {
		return nil, wrapClusterError(ErrListImageStreams, err,
			"failed to build cluster client",
			map[string]any{"api": apiURL})
	}
	return NewInventory(client, logger), nil
}

// Images lists the image streams of one namespace as migration inventory,
// sorted by name. Tags keep the cluster's reported order; a tag with no
// recorded event keeps a zero creation time.
func (inv *Inventory) Images(ctx context.Context, namespace string) ([]migrate.Image, error) {
	list, err := inv.client.Resource(imageStreamResource).Namespace(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, wrapClusterError(ErrListImageStreams, err,
			"failed to list image streams",
			map[string]any{"namespace": namespace})
	}

	images := make([]migrate.Image, 0, len(list.Items))
	for i := range list.Items {
		item := &list.Items[i]
		images = append(images, migrate.Image{
			Namespace: namespace,
			Name:      item.GetName(),
			Tags:      tagsFrom(item),
		})
	}
	sort.Slice(images, func(i, j int) bool { return images[i].Name < images[j].Name })

	inv.logger.Debug("Listed image streams",
		zap.String("namespace", namespace),
		zap.Int("count", len(images)))
	return images, nil
}

// tagsFrom reads status.tags of an image stream. Each tag's creation time is
// the first (newest) tag event's timestamp.
func tagsFrom(obj *unstructured.Unstructured) []migrate.Tag {
	entries, found, err := unstructured.NestedSlice(obj.Object, "status", "tags")
	if err != nil || !found {
		return nil
	}
	var tags []migrate.Tag
	for _, entry := range entries {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		name, _, _ := unstructured.NestedString(m, "tag")
		if name == "" {
			continue
		}
		tag := migrate.Tag{Name: name}
		if items, found, _ := unstructured.NestedSlice(m, "items"); found && len(items) > 0 {
			if newest, ok := items[0].(map[string]interface{}); ok {
				if created, _, _ := unstructured.NestedString(newest, "created"); created != "" {
					if ts, err := time.Parse(time.RFC3339, created); err == nil {
						tag.Created = ts
					}
				}
			}
		}
		tags = append(tags, tag)
	}
	return tags
}
