/*
go-openpose assembles multi-person 2D skeletons from the output tensor of an
OpenPose MPI body model, the keypoint heatmap and Part Affinity Field (PAF)
network.  It is the post processing stage that follows running the model on
the Rockchip NPU with go-rknnlite.

The output tensor is processed in four stages:

  - joint candidates are found on each heatmap layer by thresholding and
    Non-Maximum Suppression
  - every pairing of candidates for a limb is scored by sampling the limb's
    PAF along the line between them
  - each limb type is matched one-to-one greedily by score
  - matched limbs are clustered into skeletons by shared joints

See the postprocess package for use with RKNN Outputs, the render package
for drawing results and example code in the example subdirectory.
*/
package openpose
