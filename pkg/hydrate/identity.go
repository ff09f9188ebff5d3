package hydrate

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// KindNamespaceName identifies a resource within a manifest stream.
type KindNamespaceName struct {
	GVK       metav1.GroupVersionKind
	Namespace string
	Name      string
}

// NewKindNamespaceName returns a KindNamespaceName from a yaml format resource.
func NewKindNamespaceName(doc []byte) (KindNamespaceName, error) {
	// yaml.v3 produces string keyed maps as unstructured expects.
	m := map[string]interface{}{}
	err := yaml.Unmarshal(doc, &m)
	if err != nil {
		return KindNamespaceName{}, err
	}

	obj := &unstructured.Unstructured{Object: m}
	gvk := obj.GroupVersionKind()

	return KindNamespaceName{
		GVK: metav1.GroupVersionKind{
			Group:   gvk.Group,
			Version: gvk.Version,
			Kind:    gvk.Kind,
		},
		Namespace: obj.GetNamespace(),
		Name:      obj.GetName(),
	}, nil
}

// String makes the receiver implement Stringer.
func (k KindNamespaceName) String() string {
	return fmt.Sprintf(`%v, %v, %v, %v, %v`,
		k.GVK.Group, k.GVK.Version, k.GVK.Kind, k.Namespace, k.Name)
}

// Filename returns the file a split resource is written to.
// Kind, namespace and name can not contain '_' so the result is unique per
// identity.
func (k KindNamespaceName) Filename() string {
	return strings.ToLower(k.GVK.Kind) + "_" + k.Namespace + "_" + k.Name + ".yaml"
}

// Complete is true when the receiver has enough fields to name a file.
func (k KindNamespaceName) complete() bool {
	return k.GVK.Kind != "" && k.Name != ""
}

// Identity reduces the receiver to the fields that determine the output file.
// Group and Version are ignored since for example a v1beta1 Ingress and a v1
// Ingress still map to the same file.
func (k KindNamespaceName) identity() KindNamespaceName {
	k.GVK = metav1.GroupVersionKind{Kind: k.GVK.Kind}
	return k
}

// Duplicates returns list items that map to the same file (IOW overwrite each
// other) while keeping list order.
func duplicates(list []KindNamespaceName) []KindNamespaceName {
	idx := make(map[KindNamespaceName]int, len(list))
	for _, x := range list {
		idx[x.identity()]++
	}

	var r []KindNamespaceName
	for _, x := range list {
		if idx[x.identity()] <= 1 {
			continue
		}
		r = append(r, x)
	}

	return r
}
