//go:build windows

package webgpu

// WGSL compute shaders for the GPU kernels.
// Using string constants instead of embed for simplicity.

// workgroupSize is the default number of threads per workgroup.
const workgroupSize = 256

const binaryShaderPrelude = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
`

// Element-wise binary kernels. All operands share one shape; broadcasting
// stays on the CPU path.
const (
	addShader = binaryShaderPrelude + `        result[idx] = a[idx] + b[idx];
    }
}
`
	subShader = binaryShaderPrelude + `        result[idx] = a[idx] - b[idx];
    }
}
`
	mulShader = binaryShaderPrelude + `        result[idx] = a[idx] * b[idx];
    }
}
`
	divShader = binaryShaderPrelude + `        result[idx] = a[idx] / b[idx];
    }
}
`
)

const unaryShaderPrelude = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
    eps: f32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
`

// Element-wise unary kernels. The eps uniform is only read by sqrtShader.
const (
	tanhShader = unaryShaderPrelude + `        result[idx] = tanh(input[idx]);
    }
}
`
	sigmoidShader = unaryShaderPrelude + `        result[idx] = 1.0 / (1.0 + exp(-input[idx]));
    }
}
`
	reluShader = unaryShaderPrelude + `        result[idx] = max(0.0, input[idx]);
    }
}
`
	expShader = unaryShaderPrelude + `        result[idx] = exp(input[idx]);
    }
}
`
	logShader = unaryShaderPrelude + `        result[idx] = log(input[idx]);
    }
}
`
	sqrtShader = unaryShaderPrelude + `        result[idx] = sqrt(input[idx] + params.eps);
    }
}
`
	squareShader = unaryShaderPrelude + `        result[idx] = input[idx] * input[idx];
    }
}
`
	negShader = unaryShaderPrelude + `        result[idx] = -input[idx];
    }
}
`
)

// matmulShader performs matrix multiplication: C = A @ B.
// A is [M, K], B is [K, N], C is [M, N].
const matmulShader = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    M: u32,  // rows of A and C
    K: u32,  // cols of A, rows of B
    N: u32,  // cols of B and C
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let row = global_id.y;
    let col = global_id.x;

    if (row >= params.M || col >= params.N) {
        return;
    }

    var sum: f32 = 0.0;
    for (var k: u32 = 0u; k < params.K; k = k + 1u) {
        let a_idx = row * params.K + k;
        let b_idx = k * params.N + col;
        sum = sum + a[a_idx] * b[b_idx];
    }

    let c_idx = row * params.N + col;
    result[c_idx] = sum;
}
`

// transposeShader transposes a 2D matrix.
const transposeShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    rows: u32,
    cols: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let row = global_id.y;
    let col = global_id.x;

    if (row >= params.rows || col >= params.cols) {
        return;
    }

    let in_idx = row * params.cols + col;
    let out_idx = col * params.rows + row;
    result[out_idx] = input[in_idx];
}
`

// softmaxShader applies row-wise softmax with the max trick. One thread
// handles one row; rows of a translation batch are short enough that the
// serial inner loop wins over a parallel reduction.
const softmaxShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    rows: u32,
    cols: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let row = global_id.x;
    if (row >= params.rows) {
        return;
    }

    let base = row * params.cols;

    var max_val: f32 = input[base];
    for (var c: u32 = 1u; c < params.cols; c = c + 1u) {
        max_val = max(max_val, input[base + c]);
    }

    var sum: f32 = 0.0;
    for (var c: u32 = 0u; c < params.cols; c = c + 1u) {
        let e = exp(input[base + c] - max_val);
        result[base + c] = e;
        sum = sum + e;
    }

    for (var c: u32 = 0u; c < params.cols; c = c + 1u) {
        result[base + c] = result[base + c] / sum;
    }
}
`
