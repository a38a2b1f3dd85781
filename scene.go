package ringdataset

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/pointcloud"

	ringpose "github.com/alonzanbar/ring-dataset-gen/ring_pose"
)

// GeometryProvider describes a named subject's world-space geometry. It is
// consulted once per run, before sampling begins.
type GeometryProvider interface {
	Describe(name string) (ringpose.GeometryDescriptor, error)
}

// StaticGeometry is a GeometryProvider backed by precomputed descriptors.
type StaticGeometry map[string]ringpose.GeometryDescriptor

// Describe implements GeometryProvider.
func (s StaticGeometry) Describe(name string) (ringpose.GeometryDescriptor, error) {
	geom, ok := s[name]
	if !ok {
		return ringpose.GeometryDescriptor{}, fmt.Errorf("%w: %q", ErrObjectNotFound, name)
	}
	return geom, nil
}

// CloudGeometry derives geometry descriptors from point clouds of the scene
// objects. The descriptor's center is the bounding-box midpoint, the radius
// is half the box diagonal, and the ground plane is the box's minimum Z.
type CloudGeometry struct {
	clouds map[string]pointcloud.PointCloud
	logger logging.Logger
}

// NewCloudGeometry returns an empty point-cloud-backed geometry provider.
func NewCloudGeometry(logger logging.Logger) *CloudGeometry {
	return &CloudGeometry{
		clouds: map[string]pointcloud.PointCloud{},
		logger: logger,
	}
}

// AddCloud registers a point cloud under an object name.
func (g *CloudGeometry) AddCloud(name string, cloud pointcloud.PointCloud) {
	g.clouds[name] = cloud
}

// AddPCDFile loads a PCD file and registers it under an object name. Dense
// scans are downsampled; the bounding box only needs coverage, not density.
func (g *CloudGeometry) AddPCDFile(name, path string) error {
	cloud, err := pointcloud.NewFromFile(path, "")
	if err != nil {
		return fmt.Errorf("reading PCD %s: %w", path, err)
	}
	if cloud.Size() > maxCloudPoints {
		cloud = g.downsample(cloud, maxCloudPoints)
	}
	g.clouds[name] = cloud
	g.logger.Infof("Loaded %d points for object %q from %s", cloud.Size(), name, path)
	return nil
}

const maxCloudPoints = 50000

// downsample thins a point cloud to approximately the target number of
// points by keeping every Nth point.
func (g *CloudGeometry) downsample(cloud pointcloud.PointCloud, targetPoints int) pointcloud.PointCloud {
	g.logger.Infof("Point cloud has %d points, downsampling to ~%d...", cloud.Size(), targetPoints)

	downsampled := pointcloud.NewBasicEmpty()
	step := cloud.Size() / targetPoints
	if step < 1 {
		step = 1
	}
	i := 0
	cloud.Iterate(0, 0, func(p r3.Vector, d pointcloud.Data) bool {
		if i%step == 0 {
			if err := downsampled.Set(p, d); err != nil {
				g.logger.Warnf("Failed to add point: %v", err)
			}
		}
		i++
		return true
	})
	return downsampled
}

// Describe implements GeometryProvider.
func (g *CloudGeometry) Describe(name string) (ringpose.GeometryDescriptor, error) {
	cloud, ok := g.clouds[name]
	if !ok {
		return ringpose.GeometryDescriptor{}, fmt.Errorf("%w: %q", ErrObjectNotFound, name)
	}
	if cloud == nil || cloud.Size() == 0 {
		return ringpose.GeometryDescriptor{}, fmt.Errorf("%w: %q", ErrNoGeometry, name)
	}

	first := true
	var lo, hi r3.Vector
	cloud.Iterate(0, 0, func(p r3.Vector, _ pointcloud.Data) bool {
		if first {
			lo, hi = p, p
			first = false
			return true
		}
		lo.X = math.Min(lo.X, p.X)
		lo.Y = math.Min(lo.Y, p.Y)
		lo.Z = math.Min(lo.Z, p.Z)
		hi.X = math.Max(hi.X, p.X)
		hi.Y = math.Max(hi.Y, p.Y)
		hi.Z = math.Max(hi.Z, p.Z)
		return true
	})

	diagonal := hi.Sub(lo)
	radius := diagonal.Norm() / 2.0
	if radius <= 0 {
		return ringpose.GeometryDescriptor{}, fmt.Errorf("%w: %q has zero extent", ErrNoGeometry, name)
	}

	return ringpose.GeometryDescriptor{
		Center:       lo.Add(hi).Mul(0.5),
		Radius:       radius,
		BoundsMin:    lo,
		BoundsMax:    hi,
		GroundPlaneZ: lo.Z,
	}, nil
}
