// Package sl defines the Second Life avatar skeleton: the VRM-to-SL bone name
// tables and the parent-child topology the converted skeleton must follow.
//
// https://wiki.secondlife.com/wiki/Project_Bento_Skeleton_Guide
package sl

// BonePair maps a VRM humanoid bone name to the SL skeleton bone name.
type BonePair struct {
	VRM string
	SL  string
}

// Relation is a parent-child edge between two VRM humanoid bone names.
type Relation struct {
	Parent string
	Child  string
}

// RequiredBones must all be present in the source model for a conversion to
// proceed.
var RequiredBones = []string{
	"hips",
	"spine",
	"chest",
	"neck",
	"head",
	"leftUpperArm",
	"leftLowerArm",
	"leftHand",
	"rightUpperArm",
	"rightLowerArm",
	"rightHand",
	"leftUpperLeg",
	"leftLowerLeg",
	"leftFoot",
	"rightUpperLeg",
	"rightLowerLeg",
	"rightFoot",
}

// CoreBones maps the torso and limb chains.
var CoreBones = []BonePair{
	{"hips", "mPelvis"},
	{"spine", "mTorso"},
	{"chest", "mChest"},
	{"neck", "mNeck"},
	{"head", "mHead"},
	{"leftShoulder", "mCollarLeft"},
	{"leftUpperArm", "mShoulderLeft"},
	{"leftLowerArm", "mElbowLeft"},
	{"leftHand", "mWristLeft"},
	{"rightShoulder", "mCollarRight"},
	{"rightUpperArm", "mShoulderRight"},
	{"rightLowerArm", "mElbowRight"},
	{"rightHand", "mWristRight"},
	{"leftUpperLeg", "mHipLeft"},
	{"leftLowerLeg", "mKneeLeft"},
	{"leftFoot", "mAnkleLeft"},
	{"rightUpperLeg", "mHipRight"},
	{"rightLowerLeg", "mKneeRight"},
	{"rightFoot", "mAnkleRight"},
}

// BentoBones maps the optional eye, jaw and finger bones of the Bento
// extension skeleton.
var BentoBones = []BonePair{
	{"leftEye", "mEyeLeft"},
	{"rightEye", "mEyeRight"},
	{"jaw", "mFaceJaw"},
	{"leftThumbProximal", "mHandThumb1Left"},
	{"leftThumbIntermediate", "mHandThumb2Left"},
	{"leftThumbDistal", "mHandThumb3Left"},
	{"leftIndexProximal", "mHandIndex1Left"},
	{"leftIndexIntermediate", "mHandIndex2Left"},
	{"leftIndexDistal", "mHandIndex3Left"},
	{"leftMiddleProximal", "mHandMiddle1Left"},
	{"leftMiddleIntermediate", "mHandMiddle2Left"},
	{"leftMiddleDistal", "mHandMiddle3Left"},
	{"leftRingProximal", "mHandRing1Left"},
	{"leftRingIntermediate", "mHandRing2Left"},
	{"leftRingDistal", "mHandRing3Left"},
	{"leftLittleProximal", "mHandPinky1Left"},
	{"leftLittleIntermediate", "mHandPinky2Left"},
	{"leftLittleDistal", "mHandPinky3Left"},
	{"rightThumbProximal", "mHandThumb1Right"},
	{"rightThumbIntermediate", "mHandThumb2Right"},
	{"rightThumbDistal", "mHandThumb3Right"},
	{"rightIndexProximal", "mHandIndex1Right"},
	{"rightIndexIntermediate", "mHandIndex2Right"},
	{"rightIndexDistal", "mHandIndex3Right"},
	{"rightMiddleProximal", "mHandMiddle1Right"},
	{"rightMiddleIntermediate", "mHandMiddle2Right"},
	{"rightMiddleDistal", "mHandMiddle3Right"},
	{"rightRingProximal", "mHandRing1Right"},
	{"rightRingIntermediate", "mHandRing2Right"},
	{"rightRingDistal", "mHandRing3Right"},
	{"rightLittleProximal", "mHandPinky1Right"},
	{"rightLittleIntermediate", "mHandPinky2Right"},
	{"rightLittleDistal", "mHandPinky3Right"},
}

// CoreHierarchy lists the target parent-child edges for the core skeleton.
// The fallback edges (chest directly to the upper arms) come first; the
// collar refinements at the end override them when the source model has
// shoulder bones, because hierarchy reconstruction applies edges in order
// and lets later edges win.
var CoreHierarchy = []Relation{
	{"hips", "spine"},
	{"spine", "chest"},
	{"chest", "neck"},
	{"neck", "head"},
	{"chest", "leftUpperArm"},
	{"leftUpperArm", "leftLowerArm"},
	{"leftLowerArm", "leftHand"},
	{"chest", "rightUpperArm"},
	{"rightUpperArm", "rightLowerArm"},
	{"rightLowerArm", "rightHand"},
	{"hips", "leftUpperLeg"},
	{"leftUpperLeg", "leftLowerLeg"},
	{"leftLowerLeg", "leftFoot"},
	{"hips", "rightUpperLeg"},
	{"rightUpperLeg", "rightLowerLeg"},
	{"rightLowerLeg", "rightFoot"},
	{"chest", "leftShoulder"},
	{"leftShoulder", "leftUpperArm"},
	{"chest", "rightShoulder"},
	{"rightShoulder", "rightUpperArm"},
}

// BentoHierarchy lists the edges for the optional Bento bones.
var BentoHierarchy = []Relation{
	{"head", "leftEye"},
	{"head", "rightEye"},
	{"head", "jaw"},
	{"leftHand", "leftThumbProximal"},
	{"leftThumbProximal", "leftThumbIntermediate"},
	{"leftThumbIntermediate", "leftThumbDistal"},
	{"leftHand", "leftIndexProximal"},
	{"leftIndexProximal", "leftIndexIntermediate"},
	{"leftIndexIntermediate", "leftIndexDistal"},
	{"leftHand", "leftMiddleProximal"},
	{"leftMiddleProximal", "leftMiddleIntermediate"},
	{"leftMiddleIntermediate", "leftMiddleDistal"},
	{"leftHand", "leftRingProximal"},
	{"leftRingProximal", "leftRingIntermediate"},
	{"leftRingIntermediate", "leftRingDistal"},
	{"leftHand", "leftLittleProximal"},
	{"leftLittleProximal", "leftLittleIntermediate"},
	{"leftLittleIntermediate", "leftLittleDistal"},
	{"rightHand", "rightThumbProximal"},
	{"rightThumbProximal", "rightThumbIntermediate"},
	{"rightThumbIntermediate", "rightThumbDistal"},
	{"rightHand", "rightIndexProximal"},
	{"rightIndexProximal", "rightIndexIntermediate"},
	{"rightIndexIntermediate", "rightIndexDistal"},
	{"rightHand", "rightMiddleProximal"},
	{"rightMiddleProximal", "rightMiddleIntermediate"},
	{"rightMiddleIntermediate", "rightMiddleDistal"},
	{"rightHand", "rightRingProximal"},
	{"rightRingProximal", "rightRingIntermediate"},
	{"rightRingIntermediate", "rightRingDistal"},
	{"rightHand", "rightLittleProximal"},
	{"rightLittleProximal", "rightLittleIntermediate"},
	{"rightLittleIntermediate", "rightLittleDistal"},
}

// RequiredParentRelations are the parent-child pairs checked before
// conversion. The neck may also hang off an upperChest bone when the source
// has one.
var RequiredParentRelations = []Relation{
	{"hips", "spine"},
	{"spine", "chest"},
	{"chest", "neck"},
	{"neck", "head"},
	{"leftUpperArm", "leftLowerArm"},
	{"leftLowerArm", "leftHand"},
	{"rightUpperArm", "rightLowerArm"},
	{"rightLowerArm", "rightHand"},
	{"leftUpperLeg", "leftLowerLeg"},
	{"leftLowerLeg", "leftFoot"},
	{"rightUpperLeg", "rightLowerLeg"},
	{"rightLowerLeg", "rightFoot"},
}

// AllBones returns the core table followed by the Bento table.
func AllBones() []BonePair {
	bones := make([]BonePair, 0, len(CoreBones)+len(BentoBones))
	bones = append(bones, CoreBones...)
	return append(bones, BentoBones...)
}

// AllHierarchy returns the core edges followed by the Bento edges.
func AllHierarchy() []Relation {
	relations := make([]Relation, 0, len(CoreHierarchy)+len(BentoHierarchy))
	relations = append(relations, CoreHierarchy...)
	return append(relations, BentoHierarchy...)
}

// TargetName returns the SL bone name for a VRM humanoid bone name.
func TargetName(vrm string) (string, bool) {
	for _, pair := range AllBones() {
		if pair.VRM == vrm {
			return pair.SL, true
		}
	}
	return "", false
}
