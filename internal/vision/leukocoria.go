package vision

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"

	"pupilla/internal/config"
	"pupilla/internal/engine"
	"pupilla/pkg/log"
)

// HSV cutoffs for a white or yellow-white pupil reflex: low saturation and
// high brightness inside the pupil region.
const (
	reflexMaxSaturation = 50.0
	reflexMinValue      = 120.0
)

// ReflexAnalyzer checks flash photos for leukocoria. For every located eye
// it isolates the darkest blob (the pupil), averages the color inside it
// and classifies the mean in HSV space.
type ReflexAnalyzer struct {
	mu   sync.Mutex
	face gocv.CascadeClassifier
	eye  gocv.CascadeClassifier
}

func NewReflexAnalyzer(cfg config.CascadeConfig) (*ReflexAnalyzer, error) {
	face := gocv.NewCascadeClassifier()
	if !face.Load(cfg.FaceCascadeFile) {
		face.Close()
		return nil, fmt.Errorf("load face cascade %s", cfg.FaceCascadeFile)
	}
	eye := gocv.NewCascadeClassifier()
	if !eye.Load(cfg.EyeCascadeFile) {
		face.Close()
		eye.Close()
		return nil, fmt.Errorf("load eye cascade %s", cfg.EyeCascadeFile)
	}
	return &ReflexAnalyzer{face: face, eye: eye}, nil
}

func (a *ReflexAnalyzer) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.face.Close()
	a.eye.Close()
	return nil
}

// AnalyzePhoto decodes one photo and examines every locatable eye. A photo
// where no eyes can be found is not an error; the result says the reflex
// could not be assessed, with zero confidence.
func (a *ReflexAnalyzer) AnalyzePhoto(ctx context.Context, data []byte) (*engine.ReflexResult, error) {
	logger := log.WithComponent(ctx, "reflex")

	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, &engine.DecodeError{Reason: "failed to decode image", Err: err}
	}
	defer img.Close()
	if img.Empty() {
		return nil, engine.NewDecodeError("empty image")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	faces := a.face.DetectMultiScaleWithParams(gray, 1.3, 5, 0,
		image.Pt(30, 30), image.Pt(0, 0))

	examined := 0
	abnormal := 0
	bestScore := 0.0
	for _, faceRect := range faces {
		roi := gray.Region(faceRect)
		eyes := a.eye.DetectMultiScaleWithParams(roi, 1.1, 3, 0,
			image.Pt(10, 10), image.Pt(0, 0))
		roi.Close()

		for _, eyeRect := range eyes {
			absRect := eyeRect.Add(faceRect.Min)
			saturation, value, ok := pupilHSV(img, absRect)
			if !ok {
				continue
			}
			examined++
			if isReflex(saturation, value) {
				abnormal++
				if s := reflexScore(saturation, value); s > bestScore {
					bestScore = s
				}
			}
		}
	}

	logger.Debugf("reflex check: %d eyes examined, %d abnormal", examined, abnormal)
	return buildReflexResult(examined, abnormal, bestScore), nil
}

// pupilHSV finds the pupil inside one eye rect and returns the mean
// saturation and value of its interior.
func pupilHSV(img gocv.Mat, eyeRect image.Rectangle) (float64, float64, bool) {
	eyeRect = eyeRect.Intersect(image.Rect(0, 0, img.Cols(), img.Rows()))
	if eyeRect.Empty() {
		return 0, 0, false
	}
	eyeImg := img.Region(eyeRect)
	defer eyeImg.Close()

	eyeGray := gocv.NewMat()
	defer eyeGray.Close()
	gocv.CvtColor(eyeImg, &eyeGray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(eyeGray, &blurred, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(blurred, &thresh, 50, 255, gocv.ThresholdBinaryInv)

	contours := gocv.FindContours(thresh, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()
	if contours.Size() == 0 {
		return 0, 0, false
	}

	pupilIdx := 0
	bestArea := 0.0
	for i := 0; i < contours.Size(); i++ {
		if a := gocv.ContourArea(contours.At(i)); a > bestArea {
			bestArea = a
			pupilIdx = i
		}
	}
	if bestArea <= 0 {
		return 0, 0, false
	}

	mask := gocv.Zeros(eyeImg.Rows(), eyeImg.Cols(), gocv.MatTypeCV8U)
	defer mask.Close()
	gocv.DrawContours(&mask, contours, pupilIdx, color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)

	mean := eyeImg.MeanWithMask(mask)
	return meanHSV(mean)
}

// meanHSV converts a mean BGR scalar to HSV via a 1x1 Mat so the conversion
// matches OpenCV's own math.
func meanHSV(mean gocv.Scalar) (float64, float64, bool) {
	pixel := gocv.NewMatWithSizeFromScalar(mean, 1, 1, gocv.MatTypeCV8UC3)
	defer pixel.Close()
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(pixel, &hsv, gocv.ColorBGRToHSV)

	vec := hsv.GetVecbAt(0, 0)
	if len(vec) < 3 {
		return 0, 0, false
	}
	return float64(vec[1]), float64(vec[2]), true
}

func isReflex(saturation, value float64) bool {
	return saturation < reflexMaxSaturation && value > reflexMinValue
}

// reflexScore grades how far inside the leukocoria region the pupil color
// sits, in [0, 1].
func reflexScore(saturation, value float64) float64 {
	sMargin := (reflexMaxSaturation - saturation) / reflexMaxSaturation
	vMargin := (value - reflexMinValue) / (255 - reflexMinValue)
	score := (sMargin + vMargin) / 2
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func buildReflexResult(examined, abnormal int, bestScore float64) *engine.ReflexResult {
	if examined == 0 {
		return &engine.ReflexResult{
			Normal:     true,
			Confidence: 0,
			Message:    "No eyes could be located; pupil reflex was not assessed.",
		}
	}
	if abnormal > 0 {
		return &engine.ReflexResult{
			Normal:       false,
			Confidence:   0.5 + 0.45*bestScore,
			EyesExamined: examined,
			Message: fmt.Sprintf(
				"White or yellow-white pupil reflex detected in %d of %d eyes. Consult a pediatric eye care professional promptly.",
				abnormal, examined),
		}
	}
	confidence := 0.6 + 0.1*float64(examined)
	if confidence > 0.95 {
		confidence = 0.95
	}
	return &engine.ReflexResult{
		Normal:       true,
		Confidence:   confidence,
		EyesExamined: examined,
		Message:      fmt.Sprintf("Normal pupil reflex in %d eyes examined.", examined),
	}
}
