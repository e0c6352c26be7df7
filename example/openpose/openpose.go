/*
Example code showing how to perform multi-person pose estimation using an
OpenPose MPI model.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"strings"
	"time"

	"github.com/swdee/go-openpose"
	"github.com/swdee/go-openpose/postprocess"
	"github.com/swdee/go-openpose/render"
	"github.com/swdee/go-rknnlite"
	"gocv.io/x/gocv"
)

// fastCores is the cpu affinity mask of the fast cores on each platform, or
// all cores where the platform has only one cluster
var fastCores = map[string]uintptr{
	"rk3562": rknnlite.RK3562AllCores,
	"rk3566": rknnlite.RK3566AllCores,
	"rk3568": rknnlite.RK3568AllCores,
	"rk3576": rknnlite.RK3576FastCores,
	"rk3582": rknnlite.RK3582FastCores,
	"rk3588": rknnlite.RK3588FastCores,
}

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	modelFile := flag.String("m", "../data/models/rk3588/openpose-mpi-rk3588.rknn", "RKNN compiled OpenPose MPI model file")
	imgFile := flag.String("i", "../data/people.jpg", "Image file to run pose estimation on")
	saveFile := flag.String("o", "../data/people-out.jpg", "Output JPG file")
	rkPlatform := flag.String("p", "rk3588", "Rockchip platform [rk3562|rk3566|rk3568|rk3576|rk3582|rk3588]")
	paramsFile := flag.String("c", "", "Optional YAML file of pipeline parameters")
	heatmap := flag.Int("heatmap", -1, "Joint type index of heatmap layer to overlay for debugging, -1 for none")
	paf := flag.Int("paf", -1, "Limb type index of PAF magnitude to overlay for debugging, -1 for none")
	showCandidates := flag.Bool("candidates", false, "Draw every joint candidate found for debugging")

	flag.Parse()

	mask, ok := fastCores[*rkPlatform]

	if !ok {
		log.Fatal("Unknown Rockchip platform: ", *rkPlatform)
	}

	err := rknnlite.SetCPUAffinity(mask)

	if err != nil {
		log.Printf("Failed to set CPU affinity: %v\n", err)
	}

	params := postprocess.OpenPoseMPIParams()

	if *paramsFile != "" {
		params.Pipeline, err = openpose.LoadParamsFile(*paramsFile)

		if err != nil {
			log.Fatal("Error loading pipeline params: ", err)
		}
	}

	// create rknn runtime instance
	rt, err := rknnlite.NewRuntime(*modelFile, rknnlite.NPUCoreAuto)

	if err != nil {
		log.Fatal("Error initializing RKNN runtime: ", err)
	}

	// heatmaps and PAFs are post processed as float32
	rt.SetWantFloat(true)

	// optional querying of model file tensors and SDK version for printing
	// to stdout.  not necessary for production inference code
	err = rt.Query(os.Stdout)

	if err != nil {
		log.Fatal("Error querying runtime: ", err)
	}

	// create openpose post processor
	poseProcessor, err := postprocess.NewOpenPose(params)

	if err != nil {
		log.Fatal("Error creating OpenPose post processor: ", err)
	}

	// load image
	img := gocv.IMRead(*imgFile, gocv.IMReadColor)

	if img.Empty() {
		log.Fatal("Error reading image from: ", *imgFile)
	}

	// convert colorspace and resize image to input tensor size
	rgbImg := gocv.NewMat()
	gocv.CvtColor(img, &rgbImg, gocv.ColorBGRToRGB)

	cropImg := rgbImg.Clone()
	scaleSize := image.Pt(int(rt.InputAttrs()[0].Dims[2]), int(rt.InputAttrs()[0].Dims[1]))
	gocv.Resize(rgbImg, &cropImg, scaleSize, 0, 0, gocv.InterpolationArea)

	defer img.Close()
	defer rgbImg.Close()
	defer cropImg.Close()

	start := time.Now()

	// perform inference on image file
	outputs, err := rt.Inference([]gocv.Mat{cropImg})

	if err != nil {
		log.Fatal("Runtime inferencing failed with error: ", err)
	}

	endInference := time.Now()

	// post process and assemble skeletons
	res, err := poseProcessor.DetectSkeletons(context.Background(), outputs)

	if err != nil {
		log.Fatal("Error assembling skeletons: ", err)
	}

	endDetect := time.Now()

	// free outputs allocated in C memory after you have finished post processing
	err = outputs.Free()

	if err != nil {
		log.Fatal("Error freeing Outputs: ", err)
	}

	log.Printf("Threshold=%.3f, heatmap mean=%.5f, stddev=%.5f\n",
		res.Threshold, res.Stats.Mean, res.Stats.StdDev)

	for j, cands := range res.Candidates {
		if len(cands) > 0 {
			log.Printf("Joint %s: %d candidates\n", openpose.JointType(j), len(cands))
		}
	}

	conns := res.Connections()

	for idx := 0; idx < len(conns); idx++ {
		log.Printf("Skeleton %d: %d joints, %d limbs\n", idx,
			res.Skeletons[idx].Len(), len(conns[idx]))
	}

	if *showCandidates {
		render.Candidates(&img, res.Candidates, render.DefaultStyle())
	}

	render.Skeletons(&img, res.Skeletons, render.DefaultStyle())

	endRendering := time.Now()

	log.Printf("Model first run speed: inference=%s, post processing=%s (%s), rendering=%s, total time=%s\n",
		endInference.Sub(start).String(),
		endDetect.Sub(endInference).String(),
		res.Timing.String(),
		endRendering.Sub(endDetect).String(),
		endRendering.Sub(start).String(),
	)

	// Save the result
	if ok := gocv.IMWrite(*saveFile, img); !ok {
		log.Fatal("Failed to save the image")
	}

	log.Printf("Saved pose estimation result to %s\n", *saveFile)

	if *heatmap >= 0 || *paf >= 0 {
		saveDebugLayers(poseProcessor, rt, cropImg, img, *heatmap, *paf, *saveFile)
	}

	// optional code.  run benchmark to get average time
	runBenchmark(rt, poseProcessor, []gocv.Mat{cropImg})

	// close runtime and release resources
	err = rt.Close()

	if err != nil {
		log.Fatal("Error closing RKNN runtime: ", err)
	}

	log.Println("done")
}

// saveDebugLayers runs the model again keeping the output tensor so a
// heatmap layer and/or PAF magnitude can be overlaid on the image for
// debugging.  A negative index skips that layer
func saveDebugLayers(poseProcessor *postprocess.OpenPose, rt *rknnlite.Runtime,
	cropImg gocv.Mat, srcImg gocv.Mat, heatmap, paf int, saveFile string) {

	data, err := poseProcessor.Inference(rt, []gocv.Mat{cropImg})(context.Background())

	if err != nil {
		log.Fatal("Runtime inferencing failed with error: ", err)
	}

	tensor, err := openpose.NewMPITensor(data)

	if err != nil {
		log.Fatal("Error creating tensor: ", err)
	}

	if heatmap >= 0 {
		joint := openpose.JointType(heatmap)

		saveOverlay(srcImg, fmt.Sprintf("%s heatmap", joint), joint.String(), saveFile,
			func(img *gocv.Mat) error {
				return render.Heatmap(img, tensor, joint, gocv.ColormapJet, 0.5)
			})
	}

	if paf >= 0 {
		limb := openpose.LimbType(paf)

		saveOverlay(srcImg, fmt.Sprintf("%s PAF magnitude", limb), "paf-"+limb.String(), saveFile,
			func(img *gocv.Mat) error {
				return render.PAFMagnitude(img, tensor, limb, gocv.ColormapJet, 0.5)
			})
	}
}

// saveOverlay draws the overlay on a copy of the source image and saves it
// alongside the result image with the given suffix
func saveOverlay(srcImg gocv.Mat, desc, suffix, saveFile string,
	draw func(img *gocv.Mat) error) {

	debugImg := srcImg.Clone()
	defer debugImg.Close()

	if err := draw(&debugImg); err != nil {
		log.Fatalf("Error rendering %s: %v", desc, err)
	}

	outFile := strings.TrimSuffix(saveFile, ".jpg") + "-" + suffix + ".jpg"

	if ok := gocv.IMWrite(outFile, debugImg); !ok {
		log.Fatalf("Failed to save the %s image", desc)
	}

	log.Printf("Saved %s to %s\n", desc, outFile)
}

func runBenchmark(rt *rknnlite.Runtime, poseProcessor *postprocess.OpenPose,
	mats []gocv.Mat) {

	count := 20
	start := time.Now()
	ctx := context.Background()

	for i := 0; i < count; i++ {
		// perform inference and post processing
		_, err := poseProcessor.Detect(ctx, rt, mats)

		if err != nil {
			log.Fatal("Error detecting skeletons: ", err)
		}
	}

	end := time.Now()
	total := end.Sub(start)
	avg := total / time.Duration(count)

	log.Printf("Benchmark time=%s, count=%d, average total time=%s\n",
		total.String(), count, avg.String(),
	)
}
