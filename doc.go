/*
trafficlab-3d places objects detected on a CCTV camera image onto a geocoded
ground map, with a plausible heading and speed, frame after frame.

The library is the geometric and kinematic core of a traffic analysis
pipeline: a chain of coordinate transforms (lens undistortion, planar
homography, height-aware parallax correction) combined with a per-track
temporal smoothing state machine that turns noisy frame-by-frame positions
into stable heading/speed/3D-footprint estimates, optionally snapped to
map-derived orientation guidelines.

Object detection, track ID assignment, video decoding and result
serialization are the caller's responsibility.  The engine subpackage wires
the core together for callers that supply per-frame bounding boxes and track
identities.

The root package loads the calibration file produced by the calibration UI
and the physical dimension priors used for 3D footprints.  See the
projection, layout, kinematics and engine subpackages for the core itself.
*/
package trafficlab
